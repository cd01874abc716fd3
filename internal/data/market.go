package data

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"heat-dispatch/internal/model"
)

var marketHeader = []string{"TimeFrom", "TimeTo", "HeatDemand", "ElectricityPrice"}

// Time layouts accepted in market CSV files, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"02.01.2006 15:04",
}

// ParseError points at the offending cell of a market CSV file.
// Line is 1-based and counts the header.
type ParseError struct {
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("market csv line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("market csv line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadMarketCSV reads periods from a CSV file.
func LoadMarketCSV(path string) ([]model.MarketCondition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open market data: %w", err)
	}
	defer f.Close()

	periods, err := ReadMarketCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return periods, nil
}

// ReadMarketCSV parses TimeFrom,TimeTo,HeatDemand,ElectricityPrice rows in
// file order. Header names are matched case-insensitively and a ';'
// delimiter is detected from the header line.
func ReadMarketCSV(r io.Reader) ([]model.MarketCondition, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = detectComma(raw)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Line: 1, Err: errors.New("missing header")}
		}
		return nil, &ParseError{Line: 1, Err: err}
	}
	idx, err := headerIndex(header)
	if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}

	var out []model.MarketCondition
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &ParseError{Line: perr.Line, Err: perr.Err}
			}
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}
		p, err := parseMarketRow(rec, idx, line)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// WriteMarketCSV writes periods in the layout ReadMarketCSV accepts.
func WriteMarketCSV(w io.Writer, periods []model.MarketCondition) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(marketHeader); err != nil {
		return err
	}
	for _, p := range periods {
		row := []string{
			p.TimeFrom.Format(time.RFC3339),
			p.TimeTo.Format(time.RFC3339),
			strconv.FormatFloat(p.HeatDemand, 'f', -1, 64),
			strconv.FormatFloat(p.ElectricityPrice, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func detectComma(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}
	return ','
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(marketHeader))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for _, want := range marketHeader {
			if strings.EqualFold(h, want) {
				idx[want] = i
			}
		}
	}
	for _, want := range marketHeader {
		if _, ok := idx[want]; !ok {
			return nil, fmt.Errorf("missing column %q", want)
		}
	}
	return idx, nil
}

func parseMarketRow(rec []string, idx map[string]int, line int) (model.MarketCondition, error) {
	var p model.MarketCondition
	cell := func(col string) (string, error) {
		i := idx[col]
		if i >= len(rec) {
			return "", &ParseError{Line: line, Column: col, Err: errors.New("missing value")}
		}
		return strings.TrimSpace(rec[i]), nil
	}

	for _, col := range []string{"TimeFrom", "TimeTo"} {
		raw, err := cell(col)
		if err != nil {
			return p, err
		}
		t, err := parseMarketTime(raw)
		if err != nil {
			return p, &ParseError{Line: line, Column: col, Err: err}
		}
		if col == "TimeFrom" {
			p.TimeFrom = t
		} else {
			p.TimeTo = t
		}
	}

	for _, col := range []string{"HeatDemand", "ElectricityPrice"} {
		raw, err := cell(col)
		if err != nil {
			return p, err
		}
		v, err := parseNumber(raw)
		if err != nil {
			return p, &ParseError{Line: line, Column: col, Err: err}
		}
		if col == "HeatDemand" {
			p.HeatDemand = v
		} else {
			p.ElectricityPrice = v
		}
	}
	return p, nil
}

func parseMarketTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Decimal comma, as written by semicolon-separated exports.
		if alt, altErr := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); altErr == nil {
			v, err = alt, nil
		}
	}
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
