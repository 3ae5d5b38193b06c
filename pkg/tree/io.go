package tree

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/reftree/pkg/errors"
)

// Source is the canonical serialization format for referral trees.
type Source struct {
	Nodes []Descriptor `json:"nodes"`
}

// ReadJSON decodes a JSON tree source from r.
//
// Every node id is validated with [errors.ValidateNodeID]; parent ids are not
// required to resolve, since unresolved parents are a legal (orphan) input.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]Descriptor, error) {
	var src Source
	if err := json.NewDecoder(r).Decode(&src); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "decode tree")
	}
	for i, d := range src.Nodes {
		if err := errors.ValidateNodeID(d.ID); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
	}
	return src.Nodes, nil
}

// ReadFile reads a JSON tree source from path.
func ReadFile(path string) ([]Descriptor, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON writes descriptors as indented JSON to w.
func WriteJSON(descs []Descriptor, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Source{Nodes: descs}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalJSON converts descriptors to canonical JSON bytes.
// The output is stable for identical input and is used for cache keys.
func MarshalJSON(descs []Descriptor) ([]byte, error) {
	return json.Marshal(Source{Nodes: descs})
}
