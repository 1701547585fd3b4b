package catalog

import (
	"time"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
)

// Document types in the store.
const (
	ProductType  = "product"
	CategoryType = "category"
)

// Product is a sellable item in the storefront catalog.
type Product struct {
	ID          string              `json:"_id"`
	Name        string              `json:"name"`
	Slug        docstore.Slug       `json:"slug"`
	Description string              `json:"description"`
	Price       float64             `json:"price"`
	Stock       int                 `json:"stock"`
	Category    *docstore.Reference `json:"category,omitempty"`
	Image       *docstore.Image     `json:"image,omitempty"`
	CreatedAt   time.Time           `json:"_createdAt"`
	UpdatedAt   time.Time           `json:"_updatedAt"`

	// Resolved from references when the product is read.
	CategoryName string `json:"categoryName,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
}

func (p Product) InStock() bool { return p.Stock > 0 }

// CategoryID returns the referenced category id, or "".
func (p Product) CategoryID() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Ref
}

func (p Product) imageAssetID() string {
	if p.Image == nil {
		return ""
	}
	return p.Image.Asset.Ref
}

// Category groups products.
type Category struct {
	ID        string          `json:"_id"`
	Name      string          `json:"name"`
	Image     *docstore.Image `json:"image,omitempty"`
	CreatedAt time.Time       `json:"_createdAt"`

	ImageURL string `json:"imageUrl,omitempty"`
}

func (c Category) imageAssetID() string {
	if c.Image == nil {
		return ""
	}
	return c.Image.Asset.Ref
}
