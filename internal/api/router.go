// Package api assembles the HTTP server: routes, middleware and handlers.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"heat-dispatch/internal/api/handlers"
	"heat-dispatch/internal/api/middleware"
	"heat-dispatch/internal/logger"
	"heat-dispatch/internal/metrics"
	"heat-dispatch/internal/model"
)

// Deps are the collaborators the router needs. Only Grid is required.
type Deps struct {
	Grid        *model.HeatingGrid
	Market      handlers.PeriodSource
	Sink        metrics.Sink
	Gatherer    prometheus.Gatherer
	Log         logger.Logger
	RunTTL      time.Duration
	CORSOrigins []string
	// Metrics exposes GET /metrics when true.
	Metrics bool
}

// NewRouter builds the gin engine with every API route registered.
func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = logger.NopLogger{}
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(d.Log))
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(d.Log))
	router.NoRoute(middleware.NotFound())

	store := handlers.NewRunStore(d.RunTTL)
	unitsHandler := handlers.NewUnitsHandler(d.Grid)
	optimizeHandler := handlers.NewOptimizeHandler(d.Grid, d.Market, store, d.Sink, d.Log)
	marketHandler := handlers.NewMarketHandler(d.Market)

	router.GET("/health", handlers.Health)
	if d.Metrics {
		router.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/units", unitsHandler.ListUnits)
		v1.GET("/units/merit-order", unitsHandler.MeritOrder)

		v1.POST("/optimize", optimizeHandler.Optimize)
		v1.POST("/optimize/compare", optimizeHandler.Compare)
		v1.GET("/optimize/:id/results", optimizeHandler.GetResults)

		v1.GET("/market", marketHandler.GetMarket)
	}

	return router
}
