package docstore

import (
	"sort"
	"strings"
)

// Reference points at another document.
type Reference struct {
	Type string `json:"_type,omitempty"`
	Ref  string `json:"_ref"`
}

// Ref builds a reference to id.
func Ref(id string) *Reference {
	return &Reference{Type: "reference", Ref: id}
}

// Image is an image field whose asset is a reference to an uploaded asset document.
type Image struct {
	Type  string    `json:"_type,omitempty"`
	Asset Reference `json:"asset"`
}

// ImageOf builds an image field pointing at assetID.
func ImageOf(assetID string) *Image {
	return &Image{Type: "image", Asset: Reference{Type: "reference", Ref: assetID}}
}

// Slug is a URL-safe identifier field.
type Slug struct {
	Type    string `json:"_type,omitempty"`
	Current string `json:"current"`
}

// AssetKind selects the asset endpoint an upload goes to.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetFile  AssetKind = "file"
)

// Asset is an uploaded binary.
type Asset struct {
	ID          string    `json:"_id"`
	Kind        AssetKind `json:"-"`
	URL         string    `json:"url"`
	Filename    string    `json:"originalFilename"`
	ContentType string    `json:"mimeType"`
	Size        int64     `json:"size"`
}

// ExtractRefs returns the distinct ids referenced anywhere in fields, sorted.
func ExtractRefs(fields map[string]any) []string {
	seen := map[string]struct{}{}
	walkRefs(fields, seen)
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func walkRefs(v any, seen map[string]struct{}) {
	switch t := v.(type) {
	case map[string]any:
		if ref, ok := t["_ref"].(string); ok && strings.TrimSpace(ref) != "" {
			seen[ref] = struct{}{}
		}
		for k, child := range t {
			if k == "_ref" {
				continue
			}
			walkRefs(child, seen)
		}
	case []any:
		for _, child := range t {
			walkRefs(child, seen)
		}
	}
}
