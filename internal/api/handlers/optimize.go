package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"heat-dispatch/internal/analysis"
	"heat-dispatch/internal/api/models"
	"heat-dispatch/internal/config"
	"heat-dispatch/internal/data"
	"heat-dispatch/internal/dispatch"
	"heat-dispatch/internal/export"
	"heat-dispatch/internal/logger"
	"heat-dispatch/internal/metrics"
	"heat-dispatch/internal/model"
)

// compareWorkers bounds the variations dispatched at once.
const compareWorkers = 4

var errNoMarketSource = errors.New("no market endpoint configured")

// OptimizeHandler runs the dispatch engine against the server catalog.
type OptimizeHandler struct {
	grid   *model.HeatingGrid
	market PeriodSource
	store  *RunStore
	sink   metrics.Sink
	log    logger.Logger
	engine *dispatch.Engine
}

// NewOptimizeHandler wires the handler. market and sink may be nil.
func NewOptimizeHandler(grid *model.HeatingGrid, market PeriodSource, store *RunStore, sink metrics.Sink, log logger.Logger) *OptimizeHandler {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if store == nil {
		store = NewRunStore(time.Hour)
	}
	return &OptimizeHandler{
		grid:   grid,
		market: market,
		store:  store,
		sink:   sink,
		log:    log,
		engine: dispatch.New(),
	}
}

// Optimize handles POST /api/v1/optimize
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	var req models.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}

	grid, err := h.catalog(req.Units, req.Select)
	if err != nil {
		respondErr(c, err)
		return
	}
	periods, err := h.periods(c.Request.Context(), req.Periods, req.Market)
	if err != nil {
		h.respondPeriodsErr(c, err)
		return
	}

	id, run, err := h.run(grid.Units, periods)
	if err != nil {
		h.log.Warnf("optimize failed: %v", err)
		respondErr(c, err)
		return
	}

	resp := models.OptimizeResponse{
		ID:      id,
		Status:  "completed",
		Summary: buildSummary(run, periods),
		Units:   analysis.SummarizeUnits(grid.Units, run.Results),
	}
	if req.Options.IncludeResults {
		if req.Options.SkipIdle {
			resp.Results = run.Active()
		} else {
			resp.Results = run.Results
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetResults handles GET /api/v1/optimize/:id/results?format=&skip_idle=
func (h *OptimizeHandler) GetResults(c *gin.Context) {
	id := c.Param("id")
	stored, ok := h.store.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, CodeNotFound, fmt.Sprintf("run %q not found or expired", id), map[string]any{"id": id})
		return
	}

	format := export.FormatJSON
	if raw := c.Query("format"); raw != "" {
		f, err := export.ParseFormat(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), map[string]any{"format": raw})
			return
		}
		format = f
	}
	var opts export.Options
	if raw := c.Query("skip_idle"); raw != "" {
		skip, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, CodeInvalidRequest, "skip_idle must be a boolean", map[string]any{"skip_idle": raw})
			return
		}
		opts.SkipIdle = skip
	}

	if format != export.FormatJSON {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=results-%s.%s", id, format))
	}
	c.Header("Content-Type", export.ContentType(format))
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, format, stored.Run.Results, opts); err != nil {
		h.log.Errorf("write results %s: %v", id, err)
	}
}

// Compare handles POST /api/v1/optimize/compare
func (h *OptimizeHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}

	// Fetch periods once for every variation.
	periods, err := h.periods(c.Request.Context(), req.Periods, req.Market)
	if err != nil {
		h.respondPeriodsErr(c, err)
		return
	}

	comparison := make([]models.ComparisonResult, len(req.Variations))
	var g errgroup.Group
	g.SetLimit(compareWorkers)
	for i, v := range req.Variations {
		i, v := i, v
		g.Go(func() error {
			comparison[i] = h.compareOne(v, periods)
			return nil
		})
	}
	_ = g.Wait()

	c.JSON(http.StatusOK, models.CompareResponse{Comparison: comparison})
}

func (h *OptimizeHandler) compareOne(v models.Variation, periods []model.MarketCondition) models.ComparisonResult {
	result := models.ComparisonResult{Name: v.Name}
	grid, err := h.catalog(v.Units, v.Select)
	if err == nil {
		var run *dispatch.Run
		_, run, err = h.run(grid.Units, periods)
		if err == nil {
			summary := buildSummary(run, periods)
			result.Summary = &summary
		}
	}
	if err != nil {
		_, detail := errorDetail(err)
		result.Error = &detail
	}
	return result
}

// run executes the engine, records the outcome and stores successful runs.
func (h *OptimizeHandler) run(units []model.ProductionUnit, periods []model.MarketCondition) (string, *dispatch.Run, error) {
	start := time.Now()
	run, err := h.engine.Run(units, periods)
	ev := metrics.RunEvent{Status: metrics.StatusOK, Duration: time.Since(start), Time: start}
	if err != nil {
		ev.Status = metrics.StatusError
		h.record(ev)
		return "", nil, err
	}

	id := h.store.Put(units, run)
	ev.RunID = id
	ev.Results = run.Results
	h.record(ev)
	h.log.Infow("optimization completed", map[string]any{
		"id":      id,
		"units":   len(units),
		"periods": run.Periods(),
		"costs":   run.Totals.Costs,
	})
	return id, run, nil
}

func (h *OptimizeHandler) record(ev metrics.RunEvent) {
	if err := h.sink.RecordRun(ev); err != nil {
		h.log.Warnf("record run: %v", err)
	}
}

// catalog applies request overrides and selection to the server catalog.
func (h *OptimizeHandler) catalog(units []model.ProductionUnit, sel []string) (*model.HeatingGrid, error) {
	grid := &model.HeatingGrid{}
	if h.grid != nil {
		grid.Name = h.grid.Name
		grid.Buildings = h.grid.Buildings
		grid.Units = h.grid.Units
	}
	grid.Units = config.MergeUnits(grid.Units, units)
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return grid.Select(sel)
}

func (h *OptimizeHandler) periods(ctx context.Context, periods []model.MarketCondition, window *models.MarketWindow) ([]model.MarketCondition, error) {
	if len(periods) > 0 || window == nil {
		return periods, nil
	}
	q := data.MarketQuery{From: window.From, To: window.To, Area: window.Area}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if h.market == nil {
		return nil, errNoMarketSource
	}
	return h.market.FetchPeriods(ctx, q)
}

func (h *OptimizeHandler) respondPeriodsErr(c *gin.Context, err error) {
	if !errors.Is(err, errNoMarketSource) && !errors.Is(err, data.ErrInvalidWindow) {
		h.log.Warnf("fetch periods: %v", err)
	}
	respondErr(c, err)
}

func buildSummary(run *dispatch.Run, periods []model.MarketCondition) models.RunSummary {
	s := models.RunSummary{
		Periods: run.Periods(),
		Units:   run.Units,
		Totals:  run.Totals,
		Market:  analysis.SummarizeMarket(periods),
	}
	if len(periods) > 0 {
		s.Window = models.TimeWindow{Start: periods[0].TimeFrom, End: periods[len(periods)-1].TimeTo}
	}
	for _, cov := range run.Coverage {
		if !cov.Covered() {
			s.UncoveredPeriods++
		}
	}
	return s
}
