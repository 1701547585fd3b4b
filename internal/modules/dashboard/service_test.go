package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/georgemunganga/accessories-admin/internal/modules/catalog"
	"github.com/georgemunganga/accessories-admin/internal/modules/order"
	"github.com/georgemunganga/accessories-admin/internal/web"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeOrders struct {
	orders []*order.Order
	err    error
}

func (f fakeOrders) ListOrders(context.Context, string) ([]*order.Order, error) { return f.orders, f.err }

type fakeCatalog struct {
	products   []*catalog.Product
	categories []*catalog.Category
}

func (f fakeCatalog) ListProducts(context.Context, string) ([]*catalog.Product, error) {
	return f.products, nil
}

func (f fakeCatalog) ListCategories(context.Context) ([]*catalog.Category, error) {
	return f.categories, nil
}

func TestOverview(t *testing.T) {
	orders := fakeOrders{orders: []*order.Order{
		{Status: order.StatusPending, GrandTotal: 10.25},
		{Status: order.StatusShipped, GrandTotal: 5},
		{Status: order.StatusShipped, GrandTotal: 4.75},
		{GrandTotal: 1},
	}}
	cat := fakeCatalog{
		products:   []*catalog.Product{{Stock: 0}, {Stock: 3}, {Stock: 0}},
		categories: []*catalog.Category{{}, {}},
	}

	ov := NewService(orders, cat, zap.NewNop()).Overview(context.Background())

	assert.Equal(t, 4, ov.Orders)
	assert.Equal(t, 3, ov.Products)
	assert.Equal(t, 2, ov.OutOfStock)
	assert.Equal(t, 2, ov.Categories)
	assert.Equal(t, "21.00", ov.Revenue.StringFixed(2))

	want := []StatusCount{{"Pending", 1}, {"Shipped", 2}, {"Delivered", 0}, {"No status", 1}}
	if diff := cmp.Diff(want, ov.StatusCounts); diff != "" {
		t.Errorf("status counts (-want +got):\n%s", diff)
	}
}

func TestOverviewDegrades(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := NewService(fakeOrders{err: errors.New("timeout")}, fakeCatalog{}, zap.New(core))

	ov := svc.Overview(context.Background())
	assert.Zero(t, ov.Orders)
	assert.True(t, ov.Revenue.IsZero())
	assert.Equal(t, 1, logs.FilterMessage("dashboard: fetch orders").Len())
}

func TestDashboardPage(t *testing.T) {
	view, err := web.NewRenderer(zap.NewNop(), func(*http.Request) string { return "ops@example.com" })
	require.NoError(t, err)
	svc := NewService(fakeOrders{}, fakeCatalog{}, zap.NewNop())

	r := chi.NewRouter()
	NewHandler(svc, view).RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Dashboard")
	assert.Contains(t, body, "ops@example.com")
	assert.Contains(t, body, "Logout")
}
