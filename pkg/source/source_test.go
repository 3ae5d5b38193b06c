package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/source/mongo"
)

func TestDetect(t *testing.T) {
	tests := map[string]string{
		"tree.json":       KindJSON,
		"tree":            KindJSON,
		"widget.html":     KindMarkup,
		"WIDGET.HTM":      KindMarkup,
		"dir/page.x.html": KindMarkup,
	}
	for path, want := range tests {
		if got := Detect(path); got != want {
			t.Errorf("Detect(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "tree.json")
	htmlPath := filepath.Join(dir, "tree.html")
	if err := os.WriteFile(jsonPath, []byte(`{"nodes":[{"id":"a"},{"id":"b","parent":"a"}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(htmlPath, []byte(`<div class="referral__grid-item" data-id="a"></div>`), 0644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	descs, err := Load(ctx, Spec{Path: jsonPath})
	if err != nil || len(descs) != 2 {
		t.Errorf("Load(json) = %d, %v", len(descs), err)
	}
	descs, err = Load(ctx, Spec{Path: htmlPath})
	if err != nil || len(descs) != 1 {
		t.Errorf("Load(markup) = %d, %v", len(descs), err)
	}
	if _, err := Load(ctx, Spec{Kind: KindMarkup, Path: jsonPath}); err != nil {
		t.Errorf("explicit kind should override detection: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		spec Spec
		code errors.Code
	}{
		{"EmptyPath", Spec{Kind: KindJSON}, errors.ErrCodeInvalidPath},
		{"UnknownKind", Spec{Kind: "yaml", Path: "x.yaml"}, errors.ErrCodeUnsupported},
		{"Missing", Spec{Path: filepath.Join(t.TempDir(), "nope.json")}, errors.ErrCodeFileNotFound},
		{"MongoUnnamed", Spec{Kind: KindMongo, Mongo: mongo.Options{URI: "mongodb://localhost"}}, errors.ErrCodeInvalidSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(ctx, tt.spec)
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSpecRef(t *testing.T) {
	if got := (Spec{Kind: KindJSON, Path: "a.json"}).Ref(); got != "a.json" {
		t.Errorf("Ref() = %q", got)
	}
	m := Spec{Kind: KindMongo, Mongo: mongo.Options{URI: "mongodb://user:pw@h", Database: "d", Collection: "c"}}
	if got := m.Ref(); got != "d.c" {
		t.Errorf("Ref() = %q, want d.c", got)
	}
}
