package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"heat-dispatch/internal/analysis"
	"heat-dispatch/internal/api/models"
	"heat-dispatch/internal/data"
	"heat-dispatch/internal/model"
)

// PeriodSource fetches market periods for a window.
type PeriodSource interface {
	FetchPeriods(ctx context.Context, q data.MarketQuery) ([]model.MarketCondition, error)
}

// MarketHandler proxies the configured market endpoint.
type MarketHandler struct {
	source PeriodSource
}

// NewMarketHandler accepts a nil source; requests then answer 503.
func NewMarketHandler(source PeriodSource) *MarketHandler {
	return &MarketHandler{source: source}
}

// GetMarket handles GET /api/v1/market?from=&to=&area=
func (h *MarketHandler) GetMarket(c *gin.Context) {
	if h.source == nil {
		respondErr(c, errNoMarketSource)
		return
	}
	var req models.MarketQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}
	q := data.MarketQuery{Area: req.Area}
	var err error
	if q.From, err = parseQueryTime(req.From); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "from: "+err.Error(), nil)
		return
	}
	if q.To, err = parseQueryTime(req.To); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "to: "+err.Error(), nil)
		return
	}

	if err := q.Validate(); err != nil {
		respondErr(c, err)
		return
	}

	periods, err := h.source.FetchPeriods(c.Request.Context(), q)
	if err != nil {
		respondErr(c, err)
		return
	}
	if periods == nil {
		periods = []model.MarketCondition{}
	}
	c.JSON(http.StatusOK, models.MarketResponse{
		Summary: analysis.SummarizeMarket(periods),
		Periods: periods,
	})
}

// parseQueryTime accepts RFC 3339 timestamps or YYYY-MM-DD dates. Empty
// input yields the zero time.
func parseQueryTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 or YYYY-MM-DD, got %q", s)
	}
	return t, nil
}
