// Package source loads the flat descriptor list a referral tree is built
// from.
//
// Three kinds of source are supported:
//
//   - "json": a file in the [tree.Source] format
//   - "markup": an HTML document carrying referral__grid-item elements
//     (see [markup])
//   - "mongo": a MongoDB collection of member documents (see [mongo])
//
// [Detect] picks json or markup from a file extension.
package source

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/source/markup"
	"github.com/matzehuels/reftree/pkg/source/mongo"
	"github.com/matzehuels/reftree/pkg/tree"
)

// Source kinds.
const (
	KindJSON   = "json"
	KindMarkup = "markup"
	KindMongo  = "mongo"
)

// Kinds lists every supported source kind.
var Kinds = []string{KindJSON, KindMarkup, KindMongo}

// Spec identifies a source.
type Spec struct {
	Kind  string
	Path  string        // json and markup
	Mongo mongo.Options // mongo
}

// Ref returns a stable description of the source, used in logs and cache keys.
func (s Spec) Ref() string {
	if s.Kind == KindMongo {
		return s.Mongo.Ref()
	}
	return s.Path
}

// Detect returns the source kind for a file path: markup for .html and .htm,
// json otherwise.
func Detect(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return KindMarkup
	default:
		return KindJSON
	}
}

// Load reads descriptors from the source described by spec.
func Load(ctx context.Context, spec Spec) ([]tree.Descriptor, error) {
	kind := spec.Kind
	if kind == "" && spec.Path != "" {
		kind = Detect(spec.Path)
	}
	if kind != KindMongo {
		if err := errors.ValidatePath(spec.Path); err != nil {
			return nil, err
		}
	}

	switch kind {
	case KindJSON:
		return tree.ReadFile(spec.Path)
	case KindMarkup:
		return markup.ReadFile(spec.Path)
	case KindMongo:
		return mongo.Load(ctx, spec.Mongo)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown source kind %q (valid: %s)", kind, strings.Join(Kinds, ", "))
	}
}
