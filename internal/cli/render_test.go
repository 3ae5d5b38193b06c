package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/pipeline"
	"github.com/matzehuels/reftree/pkg/source"
)

const referralsJSON = `{"nodes": [
	{"id": "ada", "label": "Ada"},
	{"id": "bob", "parent": "ada"},
	{"id": "cy", "parent": "ada"},
	{"id": "dee", "parent": "bob"}
]}`

func writeReferrals(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "referrals.json")
	if err := os.WriteFile(path, []byte(referralsJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,html,png", []string{"svg", "html", "png"}},
		{"spaces and empties", " svg, ,dot ", []string{"svg", "dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, parseFormats(tt.input)); diff != "" {
				t.Errorf("parseFormats(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "data/referrals", "data/referrals"},
		{"out/tree.svg", "referrals", "out/tree"},
		{"out/tree.html", "referrals", "out/tree"},
		{"out/tree", "referrals", "out/tree"},
		{"out/tree.v2", "referrals", "out/tree.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	got := outputPaths([]string{"svg"}, "diagram.image", "referrals")
	if diff := cmp.Diff(map[string]string{"svg": "diagram.image"}, got); diff != "" {
		t.Errorf("single format mismatch (-want +got):\n%s", diff)
	}

	got = outputPaths([]string{"svg", "html"}, "out/tree.svg", "referrals")
	want := map[string]string{"svg": "out/tree.svg", "html": "out/tree.html"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("multi format mismatch (-want +got):\n%s", diff)
	}
}

func TestSourceFlagsApply(t *testing.T) {
	tests := []struct {
		name     string
		flags    sourceFlags
		args     []string
		wantKind string
		wantErr  errors.Code
	}{
		{"file", sourceFlags{}, []string{"referrals.json"}, "", ""},
		{"explicit markup", sourceFlags{kind: source.KindMarkup}, []string{"page.txt"}, source.KindMarkup, ""},
		{"mongo flags imply kind", sourceFlags{uri: "mongodb://db", collection: "members"}, nil, source.KindMongo, ""},
		{"missing file", sourceFlags{}, nil, "", errors.ErrCodeInvalidInput},
		{"unknown kind", sourceFlags{kind: "csv"}, []string{"x.csv"}, "", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var spec source.Spec
			err := tt.flags.apply(&spec, tt.args)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("apply() error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("apply() error = %v", err)
			}
			if spec.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", spec.Kind, tt.wantKind)
			}
		})
	}
}

func TestRenderFlagsApply(t *testing.T) {
	f := renderFlags{formatsStr: "svg,html", vizType: pipeline.VizTypeGrid, open: "bob", popups: true}
	var opts pipeline.Options
	if err := f.apply(&opts); err != nil {
		t.Fatalf("apply() error = %v", err)
	}
	if opts.OpenTooltip != "bob" || !opts.Popups {
		t.Errorf("options = %+v", opts)
	}

	bad := []renderFlags{
		{formatsStr: "gif", vizType: pipeline.VizTypeGrid},
		{vizType: "tower"},
		{vizType: pipeline.VizTypeGrid, open: "<script>"},
	}
	for _, f := range bad {
		if err := f.apply(&pipeline.Options{}); err == nil {
			t.Errorf("apply(%+v) should fail", f)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	cfgPath, _ := writeConfig(t, nil)
	input := writeReferrals(t)
	out := filepath.Join(t.TempDir(), "tree")

	_, err := runCLI(t, "render", input, "--config", cfgPath, "-f", "svg,json,dot", "-o", out)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, ext := range []string{"svg", "json", "dot"} {
		data, err := os.ReadFile(out + "." + ext)
		if err != nil {
			t.Fatalf("missing %s output: %v", ext, err)
		}
		if !strings.Contains(string(data), "ada") {
			t.Errorf("%s output does not mention the root", ext)
		}
	}
}

func TestLayoutThenVisualize(t *testing.T) {
	cfgPath, _ := writeConfig(t, nil)
	input := writeReferrals(t)

	if _, err := runCLI(t, "layout", input, "--config", cfgPath); err != nil {
		t.Fatalf("layout: %v", err)
	}
	layoutPath := strings.TrimSuffix(input, ".json") + ".layout.json"
	l, err := grid.ReadLayoutFile(layoutPath)
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if l.RootID != "ada" || l.Levels() != 3 || l.Columns != 3 {
		t.Errorf("layout root=%q levels=%d columns=%d", l.RootID, l.Levels(), l.Columns)
	}

	if _, err := runCLI(t, "visualize", layoutPath, "--config", cfgPath, "-f", "html"); err != nil {
		t.Fatalf("visualize: %v", err)
	}
	page, err := os.ReadFile(strings.TrimSuffix(input, ".json") + ".html")
	if err != nil {
		t.Fatalf("missing html output: %v", err)
	}
	if !strings.Contains(string(page), "Ada") {
		t.Error("html output does not contain the root label")
	}
}

func TestRenderCommandErrors(t *testing.T) {
	cfgPath, _ := writeConfig(t, nil)

	_, err := runCLI(t, "render", filepath.Join(t.TempDir(), "missing.json"), "--config", cfgPath)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing source error = %v, want FILE_NOT_FOUND", err)
	}

	_, err = runCLI(t, "render", writeReferrals(t), "--config", cfgPath, "-t", "nodelink", "-f", "html")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("nodelink html error = %v, want INVALID_FORMAT", err)
	}
}
