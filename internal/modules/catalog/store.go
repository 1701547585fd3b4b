package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/google/uuid"
)

type storeRepo struct{ client docstore.Client }

// NewStoreRepository returns a Repository backed by the document store.
func NewStoreRepository(client docstore.Client) Repository { return &storeRepo{client: client} }

func (r *storeRepo) ListProducts(ctx context.Context) ([]*Product, error) {
	docs, err := r.client.Query(ctx, docstore.Query{Type: ProductType, Order: docstore.OrderCreatedDesc})
	if err != nil {
		return nil, err
	}
	products := make([]*Product, 0, len(docs))
	for _, doc := range docs {
		p := &Product{}
		if err := doc.Decode(p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := r.resolveProducts(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *storeRepo) GetProduct(ctx context.Context, id string) (*Product, error) {
	doc, err := r.client.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Type != ProductType {
		return nil, fmt.Errorf("product %s: %w", id, docstore.ErrNotFound)
	}
	return r.decodeProduct(ctx, doc)
}

func (r *storeRepo) CreateProduct(ctx context.Context, fields map[string]any) (*Product, error) {
	doc, err := r.client.Create(ctx, docstore.NewDocument(ProductType, uuid.NewString(), fields))
	if err != nil {
		return nil, err
	}
	return r.decodeProduct(ctx, doc)
}

func (r *storeRepo) PatchProduct(ctx context.Context, id string, set map[string]any) (*Product, error) {
	doc, err := r.client.Patch(ctx, id, set)
	if err != nil {
		return nil, err
	}
	return r.decodeProduct(ctx, doc)
}

func (r *storeRepo) DeleteProduct(ctx context.Context, id string) error {
	return r.client.Delete(ctx, id)
}

func (r *storeRepo) ListCategories(ctx context.Context) ([]*Category, error) {
	docs, err := r.client.Query(ctx, docstore.Query{Type: CategoryType, Order: docstore.OrderCreatedAsc})
	if err != nil {
		return nil, err
	}
	return r.decodeCategories(ctx, docs)
}

func (r *storeRepo) GetCategory(ctx context.Context, id string) (*Category, error) {
	doc, err := r.client.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Type != CategoryType {
		return nil, fmt.Errorf("category %s: %w", id, docstore.ErrNotFound)
	}
	return r.decodeCategory(ctx, doc)
}

func (r *storeRepo) CreateCategory(ctx context.Context, fields map[string]any) (*Category, error) {
	doc, err := r.client.Create(ctx, docstore.NewDocument(CategoryType, uuid.NewString(), fields))
	if err != nil {
		return nil, err
	}
	return r.decodeCategory(ctx, doc)
}

func (r *storeRepo) PatchCategory(ctx context.Context, id string, set map[string]any) (*Category, error) {
	doc, err := r.client.Patch(ctx, id, set)
	if err != nil {
		return nil, err
	}
	return r.decodeCategory(ctx, doc)
}

func (r *storeRepo) DeleteCategory(ctx context.Context, id string) error {
	return r.client.Delete(ctx, id)
}

func (r *storeRepo) UploadImage(ctx context.Context, filename string, body io.Reader) (docstore.Asset, error) {
	return r.client.UploadAsset(ctx, docstore.AssetImage, filename, body)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *storeRepo) decodeProduct(ctx context.Context, doc docstore.Document) (*Product, error) {
	p := &Product{}
	if err := doc.Decode(p); err != nil {
		return nil, err
	}
	if err := r.resolveProducts(ctx, []*Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *storeRepo) decodeCategory(ctx context.Context, doc docstore.Document) (*Category, error) {
	cats, err := r.decodeCategories(ctx, []docstore.Document{doc})
	if err != nil {
		return nil, err
	}
	return cats[0], nil
}

func (r *storeRepo) decodeCategories(ctx context.Context, docs []docstore.Document) ([]*Category, error) {
	cats := make([]*Category, 0, len(docs))
	var assetIDs []string
	for _, doc := range docs {
		c := &Category{}
		if err := doc.Decode(c); err != nil {
			return nil, err
		}
		if id := c.imageAssetID(); id != "" {
			assetIDs = append(assetIDs, id)
		}
		cats = append(cats, c)
	}
	urls, err := r.imageURLs(ctx, assetIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		c.ImageURL = urls[c.imageAssetID()]
	}
	return cats, nil
}

// resolveProducts fills CategoryName and ImageURL from the referenced documents.
// Dangling references resolve to empty values.
func (r *storeRepo) resolveProducts(ctx context.Context, products []*Product) error {
	var catIDs, assetIDs []string
	for _, p := range products {
		if id := p.CategoryID(); id != "" {
			catIDs = append(catIDs, id)
		}
		if id := p.imageAssetID(); id != "" {
			assetIDs = append(assetIDs, id)
		}
	}

	names := map[string]string{}
	if len(catIDs) > 0 {
		docs, err := r.client.Query(ctx, docstore.Query{Type: CategoryType, IDs: dedupe(catIDs)})
		if err != nil {
			return fmt.Errorf("resolve categories: %w", err)
		}
		for _, doc := range docs {
			name, _ := doc.Fields["name"].(string)
			names[doc.ID] = name
		}
	}
	urls, err := r.imageURLs(ctx, assetIDs)
	if err != nil {
		return err
	}

	for _, p := range products {
		p.CategoryName = names[p.CategoryID()]
		p.ImageURL = urls[p.imageAssetID()]
	}
	return nil
}

func (r *storeRepo) imageURLs(ctx context.Context, assetIDs []string) (map[string]string, error) {
	urls := map[string]string{}
	if len(assetIDs) == 0 {
		return urls, nil
	}
	docs, err := r.client.Query(ctx, docstore.Query{Type: docstore.ImageAssetType, IDs: dedupe(assetIDs)})
	if err != nil {
		return nil, fmt.Errorf("resolve images: %w", err)
	}
	for _, doc := range docs {
		url, _ := doc.Fields["url"].(string)
		urls[doc.ID] = url
	}
	return urls, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
