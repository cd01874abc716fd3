package export

import (
	"encoding/xml"
	"io"

	"heat-dispatch/internal/model"
)

type xmlResults struct {
	XMLName xml.Name                   `xml:"OptimizationResults"`
	Results []model.OptimizationResult `xml:"OptimizationResult"`
}

func WriteXML(w io.Writer, results []model.OptimizationResult, opts Options) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(xmlResults{Results: opts.filter(results)}); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ReadXML parses a document produced by WriteXML.
func ReadXML(r io.Reader) ([]model.OptimizationResult, error) {
	var doc xmlResults
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Results, nil
}
