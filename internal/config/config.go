package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"heat-dispatch/internal/data"
	"heat-dispatch/internal/model"
)

// EnvPrefix marks environment overrides. A double underscore separates
// nesting levels: HEAT_OUTPUT__FORMAT=xml sets output.format.
const EnvPrefix = "HEAT_"

// Config is the run configuration for the CLI and the API server.
type Config struct {
	// CatalogFile points at a YAML, XML or JSON heating grid. Relative
	// paths are resolved against the config file directory.
	CatalogFile string `json:"catalog_file"`
	// Units are merged field-wise over catalog units with the same name;
	// unknown names are appended.
	Units []model.ProductionUnit `json:"units"`
	// Select restricts dispatch to the named units. Empty selects all.
	Select []string `json:"select"`

	Market  MarketConfig  `json:"market"`
	Output  OutputConfig  `json:"output"`
	Logging LoggingConfig `json:"logging"`
	Metrics MetricsConfig `json:"metrics"`
	API     APIConfig     `json:"api"`

	dir string
}

// Load reads the file at path, applies HEAT_ environment overrides, fills
// defaults and validates. An empty path loads from the environment only.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and applies defaults without validating.
func LoadUnchecked(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var c Config
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if path != "" {
		c.dir = filepath.Dir(path)
	}
	c.SetDefaults()
	c.resolvePaths()
	return &c, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// SetDefaults fills unset sections. Without catalog_file or inline units
// the catalog falls back to data.GetDefaultCatalogPath.
func (c *Config) SetDefaults() {
	if c.CatalogFile == "" && len(c.Units) == 0 {
		c.CatalogFile = data.GetDefaultCatalogPath()
	}
	c.Market.SetDefaults()
	c.Output.SetDefaults()
	c.Logging.SetDefaults()
	c.API.SetDefaults()
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.CatalogFile == "" && len(c.Units) == 0 {
		return errors.New("catalog_file or units is required")
	}
	if err := c.Market.Validate(); err != nil {
		return fmt.Errorf("market: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// resolvePaths interprets relative paths against the config directory when
// the file exists there, falling back to the path as given.
func (c *Config) resolvePaths() {
	c.CatalogFile = c.resolve(c.CatalogFile)
	c.Market.File = c.resolve(c.Market.File)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	cand := filepath.Join(c.dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

// Catalog builds the validated heating grid this config describes: the
// catalog file, inline unit overrides, then the unit selection.
func (c *Config) Catalog() (*model.HeatingGrid, error) {
	grid := &model.HeatingGrid{}
	if c.CatalogFile != "" {
		loaded, err := data.LoadCatalog(c.CatalogFile)
		if err != nil {
			return nil, err
		}
		grid = loaded
	}
	grid.Units = MergeUnits(grid.Units, c.Units)
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return grid.Select(c.Select)
}

// MergeUnits overlays overrides onto base by unit name, keeping base order
// and appending units base does not have.
func MergeUnits(base, overrides []model.ProductionUnit) []model.ProductionUnit {
	out := append([]model.ProductionUnit(nil), base...)
	for _, o := range overrides {
		merged := false
		for i := range out {
			if strings.TrimSpace(out[i].Name) == strings.TrimSpace(o.Name) {
				out[i] = MergeUnit(out[i], o)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, o)
		}
	}
	return out
}

// MergeUnit overlays non-zero fields from override onto base.
// A zero in the override cannot clear a base value.
func MergeUnit(base, override model.ProductionUnit) model.ProductionUnit {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.ImagePath != "" {
		out.ImagePath = override.ImagePath
	}
	if override.MaxHeat != 0 {
		out.MaxHeat = override.MaxHeat
	}
	if override.ProductionCost != 0 {
		out.ProductionCost = override.ProductionCost
	}
	if override.CO2Emissions != 0 {
		out.CO2Emissions = override.CO2Emissions
	}
	if override.GasConsumption != 0 {
		out.GasConsumption = override.GasConsumption
	}
	if override.MaxElectricity != 0 {
		out.MaxElectricity = override.MaxElectricity
	}
	return out
}
