package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"heat-dispatch/internal/api/models"
	"heat-dispatch/internal/logger"
)

// ErrorHandler converts panics into the INTERNAL_ERROR envelope.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.NopLogger{}
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Errorf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		message := "An unexpected error occurred"
		switch v := recovered.(type) {
		case string:
			message = v
		case error:
			message = v.Error()
		case fmt.Stringer:
			message = v.String()
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: message,
			},
		})
	})
}

// NotFound answers unknown routes with the NOT_FOUND envelope.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path),
			},
		})
	}
}
