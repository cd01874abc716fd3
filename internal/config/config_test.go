package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heat-dispatch/internal/export"
	"heat-dispatch/internal/model"
)

const gridYAML = `name: Heatington
production_units:
  - name: GB
    max_heat: 5.0
    production_cost: 500
    co2_emissions: 215
    gas_consumption: 1.1
  - name: OB
    max_heat: 4.0
    production_cost: 700
    co2_emissions: 265
    gas_consumption: 1.2
  - name: EK
    max_heat: 8.0
    production_cost: 50
    max_electricity: -8.0
`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "grids/heatington.yaml", gridYAML)
	path := write(t, dir, "config.yaml", `catalog_file: grids/heatington.yaml
units:
  - name: OB
    production_cost: 650
select: [EK, GB]
market:
  url: http://localhost:9000/market
  cache_ttl: 10m
output:
  path: out/results.xml
  skip_idle: true
logging:
  level: debug
metrics:
  prometheus_enabled: true
api:
  port: 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"catalog_file", cfg.CatalogFile, filepath.Join(dir, "grids/heatington.yaml")},
		{"market.url", cfg.Market.URL, "http://localhost:9000/market"},
		{"market.cache_ttl", cfg.Market.CacheTTL, 10 * time.Minute},
		{"market.timeout", cfg.Market.Timeout, 30 * time.Second},
		{"output.format", cfg.Output.ExportFormat(), export.FormatXML},
		{"output.skip_idle", cfg.Output.ExportOptions().SkipIdle, true},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"metrics.prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"api.port", cfg.API.Port, 9090},
		{"api.run_ttl", cfg.API.RunTTL, time.Hour},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}

	grid, err := cfg.Catalog()
	require.NoError(t, err)
	require.Len(t, grid.Units, 2)
	assert.Equal(t, "GB", grid.Units[0].Name)
	assert.Equal(t, "EK", grid.Units[1].Name)
}

func TestLoadMergesInlineUnits(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "grid.yaml", gridYAML)
	path := write(t, dir, "config.json", `{
  "catalog_file": "grid.yaml",
  "units": [
    {"name": "OB", "production_cost": 650},
    {"name": "GM", "max_heat": 3.6, "production_cost": 1100, "co2_emissions": 640, "gas_consumption": 1.9, "max_electricity": 2.7}
  ]
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	grid, err := cfg.Catalog()
	require.NoError(t, err)
	require.Len(t, grid.Units, 4)

	ob, ok := grid.Unit("OB")
	require.True(t, ok)
	assert.Equal(t, 650.0, ob.ProductionCost)
	assert.Equal(t, 4.0, ob.MaxHeat)
	assert.Equal(t, 265.0, ob.CO2Emissions)
	assert.Equal(t, "GM", grid.Units[3].Name)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "grid.yaml", gridYAML)
	path := write(t, dir, "config.yaml", "catalog_file: grid.yaml\noutput:\n  format: csv\n")

	t.Setenv("HEAT_OUTPUT__FORMAT", "json")
	t.Setenv("HEAT_API__PORT", "7070")
	t.Setenv("HEAT_MARKET__API_KEY", "abc123")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, export.FormatJSON, cfg.Output.ExportFormat())
	assert.Equal(t, 7070, cfg.API.Port)
	assert.Equal(t, "abc123", cfg.Market.APIKey)
}

func TestLoadEnvOnly(t *testing.T) {
	dir := t.TempDir()
	gridPath := write(t, dir, "grid.yaml", gridYAML)
	t.Setenv("HEAT_CATALOG_FILE", gridPath)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, gridPath, cfg.CatalogFile)
	assert.Equal(t, export.FormatCSV, cfg.Output.ExportFormat())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 8080, cfg.API.Port)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "grid.yaml", gridYAML)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad format", "catalog_file: grid.yaml\noutput:\n  format: xlsx\n", "output"},
		{"bad level", "catalog_file: grid.yaml\nlogging:\n  level: loud\n", "logging"},
		{"influx without bucket", "catalog_file: grid.yaml\nmetrics:\n  influx:\n    url: http://localhost:8086\n", "metrics"},
		{"bad port", "catalog_file: grid.yaml\napi:\n  port: 70000\n", "api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, dir, "config.yaml", tt.body))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := Load(write(t, dir, "config.toml", ""))
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestDefaultCatalogPath(t *testing.T) {
	t.Setenv("HEAT_CATALOG_FILE", "")
	dir := t.TempDir()

	cfg, err := Load(write(t, dir, "config.yaml", "output:\n  format: csv\n"))
	require.NoError(t, err)
	assert.Equal(t, "./examples/heating_grid.yaml", cfg.CatalogFile)

	// Inline units stand on their own.
	cfg, err = Load(write(t, dir, "config.yaml", "units:\n  - name: GB\n    max_heat: 5\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.CatalogFile)

	gridPath := write(t, dir, "grid.yaml", gridYAML)
	t.Setenv("HEAT_CATALOG_FILE", gridPath)
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, gridPath, cfg.CatalogFile)
	grid, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Len(t, grid.Units, 3)

	assert.ErrorContains(t, (&Config{}).Validate(), "catalog_file or units")
}

func TestCatalogErrors(t *testing.T) {
	cfg := &Config{
		Units:  []model.ProductionUnit{{Name: "GB", MaxHeat: 5, ProductionCost: 500}},
		Select: []string{"XX"},
	}
	_, err := cfg.Catalog()
	var unknown *model.UnknownUnitError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "XX", unknown.Unit)

	cfg = &Config{Units: []model.ProductionUnit{{Name: "GB", MaxHeat: -1}}}
	_, err = cfg.Catalog()
	var invalid *model.InvalidUnitError
	assert.True(t, errors.As(err, &invalid))
}

func TestMergeUnit(t *testing.T) {
	base := model.ProductionUnit{Name: "GM", MaxHeat: 3.6, ProductionCost: 1100, CO2Emissions: 640, GasConsumption: 1.9, MaxElectricity: 2.7}
	got := MergeUnit(base, model.ProductionUnit{ProductionCost: 900, ImagePath: "gm.png"})
	assert.Equal(t, 900.0, got.ProductionCost)
	assert.Equal(t, "gm.png", got.ImagePath)
	assert.Equal(t, 3.6, got.MaxHeat)
	assert.Equal(t, 2.7, got.MaxElectricity)
	assert.Equal(t, "GM", got.Name)
}
