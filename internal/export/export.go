// Package export writes dispatch results to CSV, XML and JSON and reads the
// CSV and XML forms back. Writers keep the engine's record order
// (period-major, merit order within a period); charting and reporting group
// by unit name relying on it.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"heat-dispatch/internal/model"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return FormatCSV, nil
	case "xml":
		return FormatXML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Options tune what a writer emits.
type Options struct {
	// SkipIdle drops zero-production records. The engine always emits them.
	SkipIdle bool
}

func (o Options) filter(results []model.OptimizationResult) []model.OptimizationResult {
	if !o.SkipIdle {
		return results
	}
	out := make([]model.OptimizationResult, 0, len(results))
	for _, r := range results {
		if !r.Idle() {
			out = append(out, r)
		}
	}
	return out
}

// Write encodes results in the given format.
func Write(w io.Writer, f Format, results []model.OptimizationResult, opts Options) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, results, opts)
	case FormatXML:
		return WriteXML(w, results, opts)
	case FormatJSON:
		return WriteJSON(w, results, opts)
	default:
		return fmt.Errorf("unsupported output format %q", f)
	}
}

// WriteFile creates path (and its directory) and writes results to it.
func WriteFile(path string, f Format, results []model.OptimizationResult, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(out, f, results, opts); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

// ContentType returns the MIME type served for a format.
func ContentType(f Format) string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXML:
		return "application/xml"
	default:
		return "application/json"
	}
}
