package sink

import (
	"encoding/json"

	"github.com/matzehuels/reftree/pkg/connector"
	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/measure"
)

type jsonOutput struct {
	Width      float64          `json:"width"`
	Height     float64          `json:"height"`
	Columns    int              `json:"columns"`
	Template   string           `json:"template"`
	Root       string           `json:"root"`
	Metrics    measure.Metrics  `json:"metrics"`
	Stroke     connector.Style  `json:"stroke"`
	Cards      []jsonCard       `json:"cards"`
	Connectors []connector.Path `json:"connectors"`
	Collisions []grid.Collision `json:"collisions,omitempty"`
	Orphans    []string         `json:"orphans,omitempty"`
	Rows       [][]string       `json:"rows"`
}

type jsonCard struct {
	measure.Box
	Label  string         `json:"label"`
	Status string         `json:"status"`
	Active bool           `json:"active,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// RenderJSON exports the measured layout as pretty-printed JSON: one entry
// per card with its box and status, the connector paths, and the grid as a
// matrix of ids ("" for empty cells).
func RenderJSON(l grid.Layout, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	s := newScene(l, o.metrics, o.offset)

	out := jsonOutput{
		Width:      s.boxes.Width,
		Height:     s.boxes.Height,
		Columns:    l.Columns,
		Template:   l.Template(),
		Root:       l.RootID,
		Metrics:    o.metrics,
		Stroke:     o.stroke,
		Cards:      make([]jsonCard, 0, len(s.boxes.Boxes)),
		Connectors: s.paths,
		Collisions: l.Collisions,
		Orphans:    l.Orphans,
		Rows:       make([][]string, len(l.Rows)),
	}
	if out.Connectors == nil {
		out.Connectors = []connector.Path{}
	}
	for _, b := range s.boxes.Boxes {
		c := s.cell(b)
		out.Cards = append(out.Cards, jsonCard{
			Box:    b,
			Label:  c.DisplayLabel(),
			Status: StatusLabel(c),
			Active: c.Active,
			Meta:   c.Meta,
		})
	}
	for i, row := range l.Rows {
		ids := make([]string, len(row))
		for j, c := range row {
			ids[j] = c.ID
		}
		out.Rows[i] = ids
	}
	return json.MarshalIndent(out, "", "  ")
}
