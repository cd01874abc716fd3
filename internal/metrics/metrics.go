// Package metrics records dispatch runs to Prometheus and InfluxDB.
package metrics

import (
	"time"

	"heat-dispatch/internal/model"
)

// Run outcomes used as the status label.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RunEvent describes one optimization run.
type RunEvent struct {
	RunID    string
	Status   string
	Duration time.Duration
	Results  []model.OptimizationResult
	Time     time.Time
}

// Sink records completed runs.
type Sink interface {
	RecordRun(ev RunEvent) error
}

// NopSink implements Sink with a no-op method.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error { return nil }

// MultiSink fans a run out to several sinks.
type MultiSink struct {
	Sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the event to every sink and returns the first error.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
