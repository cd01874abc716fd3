package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"heat-dispatch/internal/api/models"
	"heat-dispatch/internal/data"
	"heat-dispatch/internal/dispatch"
	"heat-dispatch/internal/model"
)

// Error codes returned in the error envelope.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInvalidCatalog    = "INVALID_CATALOG"
	CodeUnknownUnit       = "UNKNOWN_UNIT"
	CodeNoResults         = "NO_RESULTS"
	CodeNotFound          = "NOT_FOUND"
	CodeMarketUnavailable = "MARKET_UNAVAILABLE"
	CodeInternal          = "INTERNAL_ERROR"
)

func respondError(c *gin.Context, status int, code, message string, details map[string]any) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// errorDetail maps an error from the catalog, market or engine layers to
// an HTTP status and error body.
func errorDetail(err error) (int, models.ErrorDetail) {
	var (
		invalidUnit   *model.InvalidUnitError
		duplicateUnit *model.DuplicateUnitError
		unknownUnit   *model.UnknownUnitError
		invalidPeriod *model.InvalidPeriodError
		marketErr     *data.MarketAPIError
	)
	switch {
	case errors.As(err, &invalidUnit):
		return http.StatusBadRequest, models.ErrorDetail{
			Code:    CodeInvalidCatalog,
			Message: err.Error(),
			Details: map[string]any{"unit": invalidUnit.Unit, "field": invalidUnit.Field},
		}
	case errors.As(err, &duplicateUnit):
		return http.StatusBadRequest, models.ErrorDetail{
			Code:    CodeInvalidCatalog,
			Message: err.Error(),
			Details: map[string]any{"unit": duplicateUnit.Unit},
		}
	case errors.Is(err, model.ErrEmptyCatalog):
		return http.StatusUnprocessableEntity, models.ErrorDetail{
			Code:    CodeNoResults,
			Message: err.Error(),
			Details: map[string]any{"reason": "empty_catalog"},
		}
	case errors.As(err, &unknownUnit):
		return http.StatusBadRequest, models.ErrorDetail{
			Code:    CodeUnknownUnit,
			Message: err.Error(),
			Details: map[string]any{"unit": unknownUnit.Unit},
		}
	case errors.As(err, &invalidPeriod):
		return http.StatusBadRequest, models.ErrorDetail{
			Code:    CodeInvalidRequest,
			Message: err.Error(),
			Details: map[string]any{"index": invalidPeriod.Index, "field": invalidPeriod.Field},
		}
	case errors.Is(err, data.ErrInvalidWindow):
		return http.StatusBadRequest, models.ErrorDetail{
			Code:    CodeInvalidRequest,
			Message: err.Error(),
		}
	case errors.Is(err, errNoMarketSource):
		return http.StatusServiceUnavailable, models.ErrorDetail{
			Code:    CodeMarketUnavailable,
			Message: err.Error(),
		}
	case errors.Is(err, dispatch.ErrNoResults):
		return http.StatusUnprocessableEntity, models.ErrorDetail{
			Code:    CodeNoResults,
			Message: err.Error(),
		}
	case errors.As(err, &marketErr):
		status := http.StatusBadGateway
		switch marketErr.StatusCode {
		case http.StatusForbidden, http.StatusUnauthorized:
			status = http.StatusUnauthorized
		case http.StatusTooManyRequests:
			status = http.StatusTooManyRequests
		}
		return status, models.ErrorDetail{
			Code:    marketErr.Code,
			Message: marketErr.Message,
			Details: map[string]any{
				"status_code": marketErr.StatusCode,
				"retry_after": marketErr.RetryAfter,
			},
		}
	default:
		return http.StatusInternalServerError, models.ErrorDetail{
			Code:    CodeInternal,
			Message: err.Error(),
		}
	}
}

func respondErr(c *gin.Context, err error) {
	status, detail := errorDetail(err)
	c.JSON(status, models.ErrorResponse{Error: detail})
}
