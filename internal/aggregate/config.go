package aggregate

import (
	"encoding/json"
	"fmt"
	"os"
)

// stageRecord is the serialized form of a Stage. Functions cannot round-trip;
// they are recorded as descriptive strings only.
type stageRecord struct {
	Name         string            `json:"name"`
	GroupBy      []string          `json:"group_by,omitempty"`
	Metrics      map[string]string `json:"metrics,omitempty"`
	HasFilter    bool              `json:"has_filter,omitempty"`
	HasTransform bool              `json:"has_transform,omitempty"`
	OutputToNext bool              `json:"output_to_next,omitempty"`
}

// SavePipelineConfig writes a human-readable JSON record of a stage list for
// reproducibility notes. The encoding is deliberately lossy: named metrics
// keep their registry name, custom metrics and filter/transform functions
// are recorded as "custom:<output>" and boolean markers. It is not a
// loadable pipeline format.
func SavePipelineConfig(stages []Stage, path string) error {
	records := make([]stageRecord, len(stages))
	for i, s := range stages {
		rec := stageRecord{
			Name:         s.Name,
			GroupBy:      s.GroupBy,
			HasFilter:    s.Filter != nil,
			HasTransform: s.Transform != nil,
			OutputToNext: s.OutputToNext,
		}
		if len(s.Metrics) > 0 {
			rec.Metrics = make(map[string]string, len(s.Metrics))
			for out, m := range s.Metrics {
				if m.IsNamed() {
					rec.Metrics[out] = m.FuncName()
				} else {
					rec.Metrics[out] = "custom:" + out
				}
			}
		}
		records[i] = rec
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pipeline config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write pipeline config: %w", err)
	}
	return nil
}
