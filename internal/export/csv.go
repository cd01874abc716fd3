package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"heat-dispatch/internal/model"
)

var csvHeader = []string{
	"UnitName",
	"TimeFrom",
	"TimeTo",
	"ProducedHeat",
	"ElectricityProduced",
	"PrimaryEnergyConsumption",
	"Costs",
	"CO2Emissions",
}

func WriteCSV(w io.Writer, results []model.OptimizationResult, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range opts.filter(results) {
		row := []string{
			r.UnitName,
			fmtTime(r.TimeFrom),
			fmtTime(r.TimeTo),
			fmtFloat(r.ProducedHeat),
			fmtFloat(r.ElectricityProduced),
			fmtFloat(r.PrimaryEnergyConsumption),
			fmtFloat(r.Costs),
			fmtFloat(r.CO2Emissions),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file produced by WriteCSV.
func ReadCSV(r io.Reader) ([]model.OptimizationResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("result csv: missing header")
		}
		return nil, err
	}
	for i, h := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), h) {
			return nil, fmt.Errorf("result csv: column %d is %q, want %q", i+1, header[i], h)
		}
	}

	var out []model.OptimizationResult
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		res, err := parseResultRow(rec)
		if err != nil {
			return nil, fmt.Errorf("result csv line %d: %w", line, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func parseResultRow(rec []string) (model.OptimizationResult, error) {
	res := model.OptimizationResult{UnitName: rec[0]}
	var err error
	if res.TimeFrom, err = parseTime(rec[1]); err != nil {
		return res, err
	}
	if res.TimeTo, err = parseTime(rec[2]); err != nil {
		return res, err
	}
	fields := []*float64{
		&res.ProducedHeat,
		&res.ElectricityProduced,
		&res.PrimaryEnergyConsumption,
		&res.Costs,
		&res.CO2Emissions,
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[3+i]), 64)
		if err != nil {
			return res, fmt.Errorf("%s: %w", csvHeader[3+i], err)
		}
		*f = v
	}
	return res, nil
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
