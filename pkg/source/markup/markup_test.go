package markup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/tree"
)

const widget = `<!DOCTYPE html>
<html><body>
<div class="referral__grid">
  <div class="referral__grid-item" data-id="1">
    <div class="referral__grid-card active">
      <button class="referral__grid-card-user">Ann
        Lee</button>
      <span class="referral__grid-status">x</span>
    </div>
  </div>
  <div class="referral__grid-item" data-id="2" data-parent="1"><div class="referral__grid-card"><button class="referral__grid-card-user">Ben</button></div></div>
  <div class="referral__grid-item"></div>
  <div class="referral__grid-item extra" data-id=" 3 " data-parent="1"><p>plain</p></div>
</div>
</body></html>`

func TestRead(t *testing.T) {
	got, err := Read(strings.NewReader(widget))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d descriptors, want 3", len(got))
	}

	// Content is opaque; compare the parsed fields only.
	for i := range got {
		got[i].Content = ""
	}
	want := []tree.Descriptor{
		{ID: "1", Label: "Ann Lee", Active: true},
		{ID: "2", ParentID: "1", Label: "Ben"},
		{ID: "3", ParentID: "1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadKeepsInnerHTML(t *testing.T) {
	got, err := Read(strings.NewReader(widget))
	if err != nil {
		t.Fatal(err)
	}
	if got[2].Content != "<p>plain</p>" {
		t.Errorf("Content = %q, want inner HTML", got[2].Content)
	}
	if !strings.Contains(got[1].Content, `<button class="referral__grid-card-user">Ben</button>`) {
		t.Errorf("Content = %q", got[1].Content)
	}
}

func TestReadRejectsBadID(t *testing.T) {
	_, err := Read(strings.NewReader(`<div class="referral__grid-item" data-id=""></div>`))
	if !errors.Is(err, errors.ErrCodeInvalidNodeID) {
		t.Errorf("Read() error = %v, want INVALID_NODE_ID", err)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.html")
	if err := os.WriteFile(path, []byte(widget), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil || len(got) != 3 {
		t.Fatalf("ReadFile() = %d, %v", len(got), err)
	}

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.html"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}
