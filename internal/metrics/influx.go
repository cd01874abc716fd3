package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"heat-dispatch/internal/logger"
)

// InfluxSink writes one dispatch_result point per result row.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the instance and returns a NopSink when
// the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return NopSink{}
	}
	return sink
}

// RecordRun writes the run's rows in a single request. Failed runs carry
// no rows and are skipped.
func (s *InfluxSink) RecordRun(ev RunEvent) error {
	if ev.Status == StatusError || len(ev.Results) == 0 {
		return nil
	}
	points := make([]*write.Point, 0, len(ev.Results))
	for _, r := range ev.Results {
		p := write.NewPointWithMeasurement("dispatch_result").
			AddTag("unit", r.UnitName).
			AddField("produced_heat", r.ProducedHeat).
			AddField("electricity_produced", r.ElectricityProduced).
			AddField("primary_energy", r.PrimaryEnergyConsumption).
			AddField("costs", r.Costs).
			AddField("co2_emissions", r.CO2Emissions).
			SetTime(r.TimeFrom)
		if ev.RunID != "" {
			p.AddTag("run_id", ev.RunID)
		}
		points = append(points, p)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, points...)
}

func (s *InfluxSink) Close() {
	s.client.Close()
}
