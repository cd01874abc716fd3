package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// PromSink exposes run counters and per-unit production totals.
type PromSink struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	heat     *prometheus.CounterVec
	costs    *prometheus.CounterVec
	co2      *prometheus.CounterVec
}

// NewPromSink registers on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the collectors on reg. Collectors that
// are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heat_dispatch_runs_total",
			Help: "Total number of optimization runs",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "heat_dispatch_run_duration_seconds",
			Help:    "Wall time of optimization runs",
			Buckets: prometheus.DefBuckets,
		}),
		heat: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heat_dispatch_produced_heat_mwh_total",
			Help: "Heat produced per unit in MWh",
		}, []string{"unit"}),
		costs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heat_dispatch_costs_total",
			Help: "Net production costs per unit; negative costs are not counted",
		}, []string{"unit"}),
		co2: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heat_dispatch_co2_kg_total",
			Help: "CO2 emitted per unit in kg",
		}, []string{"unit"}),
	}

	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.heat, err = register(reg, s.heat); err != nil {
		return nil, err
	}
	if s.costs, err = register(reg, s.costs); err != nil {
		return nil, err
	}
	if s.co2, err = register(reg, s.co2); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun counts the run and, on success, adds each result to the unit
// totals. Counters only grow, so negative costs are skipped.
func (s *PromSink) RecordRun(ev RunEvent) error {
	status := ev.Status
	if status == "" {
		status = StatusOK
	}
	s.runs.WithLabelValues(status).Inc()
	s.duration.Observe(ev.Duration.Seconds())
	if status != StatusOK {
		return nil
	}
	for _, r := range ev.Results {
		if r.ProducedHeat > 0 {
			s.heat.WithLabelValues(r.UnitName).Add(r.ProducedHeat)
		}
		if r.Costs > 0 {
			s.costs.WithLabelValues(r.UnitName).Add(r.Costs)
		}
		if r.CO2Emissions > 0 {
			s.co2.WithLabelValues(r.UnitName).Add(r.CO2Emissions)
		}
	}
	return nil
}
