package grid

import (
	"encoding/json"
	"fmt"
	"os"
)

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout and checks that the
// rows form a rectangle of Columns cells.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Columns < 1 {
		return Layout{}, fmt.Errorf("layout must have at least one column")
	}
	if len(l.Rows) == 0 {
		return Layout{}, fmt.Errorf("layout must contain rows")
	}
	for i, row := range l.Rows {
		if len(row) != l.Columns {
			return Layout{}, fmt.Errorf("row %d has %d cells, want %d", i, len(row), l.Columns)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
