package order

import (
	"context"
	"fmt"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
)

// Document types line items point at.
const (
	productType  = "product"
	categoryType = "category"
)

type storeRepo struct{ client docstore.Client }

// NewStoreRepository returns a Repository backed by the document store.
func NewStoreRepository(client docstore.Client) Repository { return &storeRepo{client: client} }

func (r *storeRepo) ListOrders(ctx context.Context) ([]*Order, error) {
	docs, err := r.client.Query(ctx, docstore.Query{Type: ShippingType, Order: docstore.OrderCreatedDesc})
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	orders := make([]*Order, 0, len(docs))
	for _, doc := range docs {
		o := &Order{}
		if err := doc.Decode(o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := r.resolve(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *storeRepo) GetOrder(ctx context.Context, id string) (*Order, error) {
	doc, err := r.client.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Type != ShippingType {
		return nil, fmt.Errorf("order %s: %w", id, docstore.ErrNotFound)
	}
	o := &Order{}
	if err := doc.Decode(o); err != nil {
		return nil, err
	}
	if err := r.resolve(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *storeRepo) SetStatus(ctx context.Context, id string, status OrderStatus) error {
	if _, err := r.GetOrder(ctx, id); err != nil {
		return err
	}
	_, err := r.client.Patch(ctx, id, map[string]any{"status": string(status)})
	return err
}

func (r *storeRepo) DeleteOrder(ctx context.Context, id string) error {
	return r.client.Delete(ctx, id)
}

// ── helpers ──────────────────────────────────────────────────────────────────

// resolve follows line item product references, and from there the product
// category, in two batched queries.
func (r *storeRepo) resolve(ctx context.Context, orders []*Order) error {
	var productIDs []string
	for _, o := range orders {
		for _, item := range o.CartItems {
			if item.Ref != nil && item.Ref.Ref != "" {
				productIDs = append(productIDs, item.Ref.Ref)
			}
		}
	}
	if len(productIDs) == 0 {
		return nil
	}

	docs, err := r.client.Query(ctx, docstore.Query{Type: productType, IDs: productIDs})
	if err != nil {
		return fmt.Errorf("resolve products: %w", err)
	}
	var product struct {
		Name     string              `json:"name"`
		Category *docstore.Reference `json:"category"`
	}
	products := make(map[string]*ProductSummary, len(docs))
	categoryOf := map[string]string{}
	var categoryIDs []string
	for _, doc := range docs {
		product.Name, product.Category = "", nil
		if err := doc.Decode(&product); err != nil {
			return err
		}
		products[doc.ID] = &ProductSummary{ID: doc.ID, Name: product.Name}
		if product.Category != nil && product.Category.Ref != "" {
			categoryOf[doc.ID] = product.Category.Ref
			categoryIDs = append(categoryIDs, product.Category.Ref)
		}
	}

	if len(categoryIDs) > 0 {
		cats, err := r.client.Query(ctx, docstore.Query{Type: categoryType, IDs: categoryIDs})
		if err != nil {
			return fmt.Errorf("resolve categories: %w", err)
		}
		names := make(map[string]string, len(cats))
		for _, c := range cats {
			names[c.ID], _ = c.Fields["name"].(string)
		}
		for pid, cid := range categoryOf {
			products[pid].CategoryName = names[cid]
		}
	}

	for _, o := range orders {
		for i := range o.CartItems {
			item := &o.CartItems[i]
			if item.Ref == nil {
				continue
			}
			if p, ok := products[item.Ref.Ref]; ok {
				cp := *p
				item.Product = &cp
			}
		}
	}
	return nil
}
