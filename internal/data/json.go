package data

import (
	"encoding/json"
	"fmt"
	"os"

	"heat-dispatch/internal/model"
)

// LoadMarketJSON reads periods from a {"data": [...]} file, the same shape
// the market endpoint returns.
func LoadMarketJSON(path string) ([]model.MarketCondition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read market data: %w", err)
	}
	var series model.MarketSeries
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, fmt.Errorf("failed to parse market data %s: %w", path, err)
	}
	if err := model.ValidatePeriods(series.Data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series.Data, nil
}

// LoadMarket picks the CSV or JSON reader by extension.
func LoadMarket(path string) ([]model.MarketCondition, error) {
	switch extOf(path) {
	case ".json":
		return LoadMarketJSON(path)
	case ".csv", ".txt":
		return LoadMarketCSV(path)
	default:
		return nil, fmt.Errorf("unsupported market data format %q", extOf(path))
	}
}
