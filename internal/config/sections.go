package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"heat-dispatch/internal/export"
)

// MarketConfig selects where periods come from. File wins over URL.
type MarketConfig struct {
	File     string        `json:"file"`
	URL      string        `json:"url"`
	APIKey   string        `json:"api_key"`
	Area     string        `json:"area"`
	CacheTTL time.Duration `json:"cache_ttl"`
	Timeout  time.Duration `json:"timeout"`
}

func (c *MarketConfig) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

func (c MarketConfig) Validate() error {
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// OutputConfig controls the result sink. An empty path writes to stdout.
type OutputConfig struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	SkipIdle bool   `json:"skip_idle"`
}

func (c *OutputConfig) SetDefaults() {
	if c.Format != "" {
		return
	}
	if f, err := export.FormatFromPath(c.Path); err == nil && c.Path != "" {
		c.Format = string(f)
		return
	}
	c.Format = string(export.FormatCSV)
}

func (c OutputConfig) Validate() error {
	_, err := export.ParseFormat(c.Format)
	return err
}

// ExportFormat returns the validated output format.
func (c OutputConfig) ExportFormat() export.Format {
	f, err := export.ParseFormat(c.Format)
	if err != nil {
		return export.FormatCSV
	}
	return f
}

func (c OutputConfig) ExportOptions() export.Options {
	return export.Options{SkipIdle: c.SkipIdle}
}

type LoggingConfig struct {
	Level string `json:"level"`
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("unknown level %q", c.Level)
	}
	return nil
}

type MetricsConfig struct {
	PrometheusEnabled bool         `json:"prometheus_enabled"`
	Influx            InfluxConfig `json:"influx"`
}

// InfluxConfig enables the InfluxDB sink when URL is set.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

func (c InfluxConfig) Enabled() bool { return c.URL != "" }

func (c MetricsConfig) Validate() error {
	if !c.Influx.Enabled() {
		return nil
	}
	if c.Influx.Org == "" || c.Influx.Bucket == "" {
		return errors.New("influx org and bucket are required when url is set")
	}
	return nil
}

type APIConfig struct {
	Port   int           `json:"port"`
	Env    string        `json:"env"`
	RunTTL time.Duration `json:"run_ttl"`
	// CORSOrigins lists allowed origins. Empty allows any origin.
	CORSOrigins []string `json:"cors_origins"`
}

func (c *APIConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.RunTTL == 0 {
		c.RunTTL = time.Hour
	}
}

func (c APIConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.RunTTL < 0 {
		return errors.New("run_ttl must not be negative")
	}
	return nil
}

func (c APIConfig) Production() bool {
	return strings.EqualFold(c.Env, "production")
}
