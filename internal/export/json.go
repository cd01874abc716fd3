package export

import (
	"encoding/json"
	"io"

	"heat-dispatch/internal/model"
)

func WriteJSON(w io.Writer, results []model.OptimizationResult, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	filtered := opts.filter(results)
	if filtered == nil {
		filtered = []model.OptimizationResult{}
	}
	return enc.Encode(filtered)
}
