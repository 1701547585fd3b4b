package catalog

import (
	"context"
	"io"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
)

// Repository defines storage for products, categories and their images.
type Repository interface {
	// ListProducts returns every product with category names and image URLs resolved.
	ListProducts(ctx context.Context) ([]*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, fields map[string]any) (*Product, error)

	// PatchProduct sends only the given fields.
	PatchProduct(ctx context.Context, id string, set map[string]any) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	CreateCategory(ctx context.Context, fields map[string]any) (*Category, error)
	PatchCategory(ctx context.Context, id string, set map[string]any) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error

	UploadImage(ctx context.Context, filename string, r io.Reader) (docstore.Asset, error)
}
