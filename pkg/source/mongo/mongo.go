// Package mongo loads referral members from a MongoDB collection.
//
// Each document describes one member:
//
//	{ "_id": "u1", "parent": "u0", "label": "Ann", "active": true, "content": "<p>…</p>" }
//
// _id and parent may be strings or ObjectIDs; ObjectIDs are converted to
// their hex form. Fields other than these are collected into Meta.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/tree"
)

// DefaultTimeout bounds connecting and reading.
const DefaultTimeout = 30 * time.Second

// Options locates the member collection.
type Options struct {
	URI        string
	Database   string
	Collection string
	// Filter narrows the members read, e.g. {"campaign": "spring"}.
	Filter bson.M
	// SortField orders documents before indexing. Empty keeps natural order.
	SortField string
	Timeout   time.Duration
}

// Ref returns "database.collection", which identifies the source in logs
// and cache keys without exposing credentials from the URI.
func (o Options) Ref() string {
	return o.Database + "." + o.Collection
}

// Validate checks that the collection is fully named.
func (o Options) Validate() error {
	if o.URI == "" {
		return errors.New(errors.ErrCodeInvalidSource, "mongo: URI is required")
	}
	if o.Database == "" || o.Collection == "" {
		return errors.New(errors.ErrCodeInvalidSource, "mongo: database and collection are required")
	}
	return nil
}

// Load connects, reads every matching document and disconnects.
func Load(ctx context.Context, opts Options) ([]tree.Descriptor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	return Read(ctx, client.Database(opts.Database).Collection(opts.Collection), opts)
}

// Read reads members from an open collection.
func Read(ctx context.Context, coll *mongo.Collection, opts Options) ([]tree.Descriptor, error) {
	filter := opts.Filter
	if filter == nil {
		filter = bson.M{}
	}
	find := options.Find()
	if opts.SortField != "" {
		find.SetSort(bson.D{{Key: opts.SortField, Value: 1}})
	}

	cur, err := coll.Find(ctx, filter, find)
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", opts.Ref(), err)
	}
	defer cur.Close(ctx)

	var descs []tree.Descriptor
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "decode member")
		}
		d, err := Decode(doc)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo cursor %s: %w", opts.Ref(), err)
	}
	return descs, nil
}

// Decode converts one member document into a descriptor.
func Decode(doc bson.M) (tree.Descriptor, error) {
	id, ok := idString(doc["_id"])
	if !ok {
		return tree.Descriptor{}, errors.New(errors.ErrCodeInvalidSource, "member _id must be a string or ObjectID, got %T", doc["_id"])
	}
	if err := errors.ValidateNodeID(id); err != nil {
		return tree.Descriptor{}, err
	}

	d := tree.Descriptor{ID: id}
	d.ParentID, _ = idString(doc["parent"])
	d.Label, _ = doc["label"].(string)
	d.Content, _ = doc["content"].(string)
	d.Active, _ = doc["active"].(bool)

	for k, v := range doc {
		switch k {
		case "_id", "parent", "label", "content", "active":
			continue
		}
		if d.Meta == nil {
			d.Meta = make(map[string]any)
		}
		d.Meta[k] = v
	}
	return d, nil
}

func idString(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case primitive.ObjectID:
		return v.Hex(), true
	default:
		return "", false
	}
}
