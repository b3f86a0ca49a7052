package seating

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteChart writes the seat-chart artifact as indented JSON.
func WriteChart(path string, chart *Chart) error {
	data, err := json.MarshalIndent(chart, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding seat chart: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing seat chart %s: %w", path, err)
	}
	return nil
}

// ReadChart loads a seat-chart artifact.
func ReadChart(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seat chart %s: %w", path, err)
	}
	var chart Chart
	if err := json.Unmarshal(data, &chart); err != nil {
		return nil, fmt.Errorf("decoding seat chart %s: %w", path, err)
	}
	return &chart, nil
}
