package cache

// Keyer derives cache keys from the inputs of each pipeline stage.
type Keyer interface {
	// SourceKey identifies a loaded descriptor list (a Mongo query, a markup file).
	SourceKey(kind, ref string) string
	// LayoutKey identifies a grid computed from a descriptor list.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered output for a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout options that change the grid.
type LayoutKeyOpts struct {
	MinColumns int `json:"min_columns"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	VizType    string  `json:"viz_type,omitempty"`
	CardWidth  float64 `json:"card_width,omitempty"`
	CardHeight float64 `json:"card_height,omitempty"`
	ColGap     float64 `json:"col_gap,omitempty"`
	RowGap     float64 `json:"row_gap,omitempty"`
	Padding    float64 `json:"padding,omitempty"`
	Offset     float64 `json:"offset,omitempty"`
	Stroke     string  `json:"stroke,omitempty"`
	Theme      string  `json:"theme,omitempty"` // hash of the color theme
	Viewport   [2]int  `json:"viewport,omitempty"`
	Popups     bool    `json:"popups,omitempty"`
	Open       string  `json:"open,omitempty"`
	Detailed   bool    `json:"detailed,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces unscoped keys of the form "stage:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) SourceKey(kind, ref string) string {
	return hashKey("source", kind, ref)
}

func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
