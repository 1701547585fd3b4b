// Package docstore defines the document store the admin dashboard persists to.
//
// Records are loosely typed documents identified by an id and a type. Documents
// point at each other with references ({"_type":"reference","_ref":id}); a store
// refuses to delete a document another document still references.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// ImageAssetType is the document type stores use for uploaded images.
const ImageAssetType = "sanity.imageAsset"

var (
	ErrNotFound   = errors.New("document not found")
	ErrReferenced = errors.New("document is referenced by another document")
	ErrConflict   = errors.New("document already exists")
)

// Client is the set of operations the admin modules issue against a store.
type Client interface {
	// Query returns every document matching q.
	Query(ctx context.Context, q Query) ([]Document, error)

	// Get fetches a single document by id.
	Get(ctx context.Context, id string) (Document, error)

	// Create stores a new document and returns it as persisted.
	Create(ctx context.Context, doc Document) (Document, error)

	// Patch sets the given top-level fields on an existing document.
	Patch(ctx context.Context, id string, set map[string]any) (Document, error)

	// Delete removes a document. It fails with ErrReferenced when another
	// document still points at it.
	Delete(ctx context.Context, id string) error

	// UploadAsset stores a binary asset and returns its identity.
	UploadAsset(ctx context.Context, kind AssetKind, filename string, r io.Reader) (Asset, error)
}

// AssetReader is implemented by stores that keep asset bytes themselves.
type AssetReader interface {
	OpenAsset(ctx context.Context, id string) (Asset, io.ReadCloser, error)
}

// Order controls how Query sorts its results.
type Order int

const (
	OrderNone Order = iota
	OrderCreatedAsc
	OrderCreatedDesc
)

// Query selects documents of one type.
type Query struct {
	Type  string
	IDs   []string          // restrict to these ids when non-empty
	Match map[string]string // top-level string fields that must be equal
	Order Order
}

// Document is a stored record.
type Document struct {
	ID        string
	Type      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Fields    map[string]any
}

// NewDocument builds a document from an explicit field map.
func NewDocument(docType, id string, fields map[string]any) Document {
	if fields == nil {
		fields = map[string]any{}
	}
	return Document{ID: id, Type: docType, Fields: fields}
}

// Decode copies the document onto v, a pointer to a struct tagged with the
// store's JSON field names. System fields are exposed as _id, _type,
// _createdAt and _updatedAt.
func (d Document) Decode(v any) error {
	raw, err := json.Marshal(d.withSystemFields())
	if err != nil {
		return fmt.Errorf("encode document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

// MarshalJSON renders the document in the store's wire shape.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.withSystemFields())
}

// UnmarshalJSON reads the store's wire shape, lifting system fields out of the body.
func (d *Document) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	doc, err := FromMap(m)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

func (d Document) withSystemFields() map[string]any {
	m := make(map[string]any, len(d.Fields)+4)
	for k, v := range d.Fields {
		m[k] = v
	}
	m["_id"] = d.ID
	m["_type"] = d.Type
	if !d.CreatedAt.IsZero() {
		m["_createdAt"] = d.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !d.UpdatedAt.IsZero() {
		m["_updatedAt"] = d.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return m
}

// FromMap converts a wire-shaped map into a Document.
func FromMap(m map[string]any) (Document, error) {
	doc := Document{Fields: make(map[string]any, len(m))}
	for k, v := range m {
		switch k {
		case "_id":
			doc.ID, _ = v.(string)
		case "_type":
			doc.Type, _ = v.(string)
		case "_createdAt", "_updatedAt":
			s, _ := v.(string)
			if s == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return Document{}, fmt.Errorf("parse %s: %w", k, err)
			}
			if k == "_createdAt" {
				doc.CreatedAt = t
			} else {
				doc.UpdatedAt = t
			}
		case "_rev":
		default:
			doc.Fields[k] = v
		}
	}
	return doc, nil
}

// Fields turns a tagged struct into a field map suitable for Create or Patch.
// System fields are dropped.
func Fields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	for _, k := range []string{"_id", "_type", "_createdAt", "_updatedAt", "_rev"} {
		delete(m, k)
	}
	return m, nil
}

// Normalize round-trips fields through JSON so nested Go values (references,
// images, typed structs) become plain maps and slices.
func Normalize(fields map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// Matches reports whether doc satisfies the type, id and field filters of q.
func (q Query) Matches(doc Document) bool {
	if q.Type != "" && doc.Type != q.Type {
		return false
	}
	if len(q.IDs) > 0 {
		found := false
		for _, id := range q.IDs {
			if id == doc.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for k, want := range q.Match {
		got, _ := doc.Fields[k].(string)
		if got != want {
			return false
		}
	}
	return true
}
