package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/georgemunganga/accessories-admin/internal/web"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRouter(t *testing.T) (*chi.Mux, Service, *patchSpy) {
	t.Helper()
	log := zaptest.NewLogger(t)
	svc, spy, _ := newService(t)
	view, err := web.NewRenderer(log, func(*http.Request) string { return "admin@example.com" })
	require.NoError(t, err)

	h := NewHandler(svc, view, log)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Route("/api/v1", h.RegisterAPI)
	return r, svc, spy
}

func postForm(r http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func flashOf(rec *httptest.ResponseRecorder) *web.Flash {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return web.PopFlash(httptest.NewRecorder(), req)
}

func TestProductsPageShowsStock(t *testing.T) {
	r, svc, _ := newRouter(t)
	ctx := context.Background()
	_, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Ring Light", Description: "d", Price: 25, Stock: 0})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/products?category=all", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Ring Light")
	assert.Contains(t, body, "Out of Stock")
	assert.Contains(t, body, "$25.00")
}

func TestCreateProductForm(t *testing.T) {
	r, svc, _ := newRouter(t)

	rec := postForm(r, "/admin/products", url.Values{
		"name": {"Screen Guard"}, "description": {"Tempered glass"}, "price": {"4.50"}, "stock": {"12"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/products", rec.Header().Get("Location"))
	f := flashOf(rec)
	require.NotNil(t, f)
	assert.Equal(t, "success", f.Kind)

	products, err := svc.ListProducts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "screen-guard", products[0].Slug.Current)
}

func TestCreateProductFormRejectsEmptyName(t *testing.T) {
	r, svc, _ := newRouter(t)

	rec := postForm(r, "/admin/products", url.Values{
		"name": {""}, "description": {"d"}, "price": {"1"}, "stock": {"1"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product name is required.")

	products, err := svc.ListProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestDeleteProductFormReferenced(t *testing.T) {
	r, svc, spy := newRouter(t)
	ctx := context.Background()
	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Strap", Description: "d"})
	require.NoError(t, err)

	store := spy.Repository.(*storeRepo).client
	_, err = store.Create(ctx, docstore.NewDocument("shipping", "", map[string]any{
		"cartItems": []any{map[string]any{"product": docstore.Ref(p.ID)}},
	}))
	require.NoError(t, err)

	rec := postForm(r, "/admin/products/"+p.ID+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	f := flashOf(rec)
	require.NotNil(t, f)
	assert.Equal(t, "error", f.Kind)
	assert.Contains(t, f.Message, "an order is already in place")
}

func TestAPIProductErrors(t *testing.T) {
	r, _, _ := newRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/products", strings.NewReader(`{"name":"","description":"d"}`))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/catalog/products",
		strings.NewReader(`{"name":"Cable","description":"Braided","price":3,"stock":2}`))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var p Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "cable", p.Slug.Current)
}
