package data

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"heat-dispatch/internal/model"
)

// CatalogError wraps a failure to load or validate a catalog file.
type CatalogError struct {
	Path string
	Err  error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Path, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// LoadCatalog reads a heating grid from a YAML, XML or JSON file, chosen by
// extension (.config is read as XML), and validates it.
func LoadCatalog(path string) (*model.HeatingGrid, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &CatalogError{Path: path, Err: err}
	}
	grid, err := decodeCatalog(path, raw)
	if err != nil {
		return nil, &CatalogError{Path: path, Err: err}
	}
	if err := grid.Validate(); err != nil {
		return nil, &CatalogError{Path: path, Err: err}
	}
	return grid, nil
}

func decodeCatalog(path string, raw []byte) (*model.HeatingGrid, error) {
	var grid model.HeatingGrid
	switch ext := extOf(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &grid); err != nil {
			return nil, fmt.Errorf("failed to parse catalog: %w", err)
		}
	case ".xml", ".config":
		if err := xml.Unmarshal(raw, &grid); err != nil {
			return nil, fmt.Errorf("failed to parse catalog: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(raw, &grid); err != nil {
			return nil, fmt.Errorf("failed to parse catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	return &grid, nil
}

// SaveCatalog writes a heating grid in the format implied by the extension.
func SaveCatalog(path string, grid *model.HeatingGrid) error {
	if grid == nil {
		return errors.New("catalog is nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var (
		raw []byte
		err error
	)
	switch ext := extOf(path); ext {
	case ".yaml", ".yml":
		raw, err = yaml.Marshal(grid)
	case ".xml", ".config":
		raw, err = xml.MarshalIndent(grid, "", "  ")
		if err == nil {
			raw = append([]byte(xml.Header), append(raw, '\n')...)
		}
	case ".json":
		raw, err = json.MarshalIndent(grid, "", "  ")
	default:
		return fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

// GetDefaultCatalogPath returns the catalog used when none is configured.
func GetDefaultCatalogPath() string {
	if path := os.Getenv("HEAT_CATALOG_FILE"); path != "" {
		return path
	}
	return "./examples/heating_grid.yaml"
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
