package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/georgemunganga/accessories-admin/internal/platform/docstore/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Open(context.Background(), "sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

type patchSpy struct {
	Repository
	patches []map[string]any
}

func (s *patchSpy) PatchProduct(ctx context.Context, id string, set map[string]any) (*Product, error) {
	s.patches = append(s.patches, set)
	return s.Repository.PatchProduct(ctx, id, set)
}

func newService(t *testing.T) (Service, *patchSpy, *sqlstore.Store) {
	t.Helper()
	store := newStore(t)
	spy := &patchSpy{Repository: NewStoreRepository(store)}
	return NewService(spy, zaptest.NewLogger(t)), spy, store
}

func TestCreateProductResolvesCategoryAndImage(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	cat, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Cases"})
	require.NoError(t, err)

	p, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name:        "Leather Phone Case",
		Description: "Hand stitched",
		Price:       19.99,
		Stock:       4,
		CategoryID:  cat.ID,
		Image:       &Upload{Filename: "case.png", Body: strings.NewReader(pngHeader)},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "leather-phone-case", p.Slug.Current)
	assert.Equal(t, "Cases", p.CategoryName)
	assert.True(t, strings.HasPrefix(p.ImageURL, "/assets/image-"), p.ImageURL)
	assert.True(t, p.InStock())

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ImageURL, got.ImageURL)
	assert.Equal(t, cat.ID, got.CategoryID())
}

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newService(t)

	cases := []CreateProductRequest{
		{Name: "  ", Description: "d"},
		{Name: "Strap", Description: ""},
		{Name: "Strap", Description: "d", Price: -1},
		{Name: "Strap", Description: "d", Stock: -2},
	}
	for _, req := range cases {
		_, err := svc.CreateProduct(ctx, req)
		assert.ErrorIs(t, err, ErrValidation)
	}

	docs, err := store.Query(ctx, docstore.Query{Type: ProductType})
	require.NoError(t, err)
	assert.Empty(t, docs, "no create may be issued for invalid input")
}

func TestUpdateProductSendsOnlyChangedFields(t *testing.T) {
	ctx := context.Background()
	svc, spy, _ := newService(t)

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Strap", Description: "Nylon", Price: 5, Stock: 1})
	require.NoError(t, err)

	name, desc, price, stock, none := "Strap", "Nylon", 7.5, 1, ""
	updated, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{
		Name: &name, Description: &desc, Price: &price, Stock: &stock, CategoryID: &none,
	})
	require.NoError(t, err)
	assert.Equal(t, 7.5, updated.Price)
	require.Len(t, spy.patches, 1)
	assert.Equal(t, map[string]any{"price": 7.5}, spy.patches[0])

	// Nothing changed: no patch at all.
	_, err = svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Len(t, spy.patches, 1)
}

func TestUpdateProductKeepsSlug(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Strap", Description: "Nylon"})
	require.NoError(t, err)

	name := "Watch Strap"
	updated, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Watch Strap", updated.Name)
	assert.Equal(t, "strap", updated.Slug.Current)
}

func TestUpdateProductUnknown(t *testing.T) {
	svc, _, _ := newService(t)
	name := "x"
	_, err := svc.UpdateProduct(context.Background(), "missing", UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestDeleteProductReferencedByOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newService(t)

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Strap", Description: "Nylon", Price: 5})
	require.NoError(t, err)
	_, err = store.Create(ctx, docstore.NewDocument("shipping", "order-1", map[string]any{
		"cartItems": []any{map[string]any{"product": docstore.Ref(p.ID), "quantity": 1, "price": 5}},
	}))
	require.NoError(t, err)

	err = svc.DeleteProduct(ctx, p.ID)
	assert.ErrorIs(t, err, docstore.ErrReferenced)

	products, err := svc.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, products, 1, "rejected delete leaves the product in place")

	require.NoError(t, store.Delete(ctx, "order-1"))
	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
}

func TestDeleteCategoryKeepsProducts(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	cat, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Cases"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, CreateProductRequest{Name: "Case", Description: "d", CategoryID: cat.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteCategory(ctx, cat.ID), docstore.ErrReferenced)

	products, err := svc.ListProducts(ctx, cat.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Cases", products[0].CategoryName)
}

func TestListProductsByCategory(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	cases, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Cases"})
	require.NoError(t, err)
	chargers, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Chargers"})
	require.NoError(t, err)

	for _, req := range []CreateProductRequest{
		{Name: "Case A", Description: "d", CategoryID: cases.ID},
		{Name: "Case B", Description: "d", CategoryID: cases.ID},
		{Name: "Wall Charger", Description: "d", CategoryID: chargers.ID},
		{Name: "Loose", Description: "d"},
	} {
		_, err := svc.CreateProduct(ctx, req)
		require.NoError(t, err)
	}

	all, err := svc.ListProducts(ctx, AllCategories)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	onlyCases, err := svc.ListProducts(ctx, cases.ID)
	require.NoError(t, err)
	assert.Len(t, onlyCases, 2)
	for _, p := range onlyCases {
		assert.Equal(t, cases.ID, p.CategoryID())
	}
}

func TestCategoryRenameAndValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: " "})
	assert.ErrorIs(t, err, ErrValidation)

	cat, err := svc.CreateCategory(ctx, CreateCategoryRequest{
		Name:  "Cables",
		Image: &Upload{Filename: "c.png", Body: strings.NewReader(pngHeader)},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cat.ImageURL)

	name := "Cables & Adapters"
	renamed, err := svc.UpdateCategory(ctx, cat.ID, UpdateCategoryRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, renamed.Name)
	assert.Equal(t, cat.ImageURL, renamed.ImageURL)

	blank := ""
	_, err = svc.UpdateCategory(ctx, cat.ID, UpdateCategoryRequest{Name: &blank})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFilterByCategory(t *testing.T) {
	products := []*Product{
		{ID: "1", Category: docstore.Ref("a")},
		{ID: "2", Category: docstore.Ref("b")},
		{ID: "3"},
	}
	assert.Len(t, FilterByCategory(products, ""), 3)
	assert.Len(t, FilterByCategory(products, AllCategories), 3)
	got := FilterByCategory(products, "b")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
	assert.Empty(t, FilterByCategory(products, "zzz"))
}
