package sales

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/georgemunganga/accessories-admin/internal/modules/order"
	"github.com/georgemunganga/accessories-admin/internal/web"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func item(name, category string, qty int, price float64) order.LineItem {
	li := order.LineItem{Quantity: qty, Price: price}
	if name != "" {
		li.Product = &order.ProductSummary{Name: name, CategoryName: category}
	}
	return li
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAggregateKeepsFirstSeenPrice(t *testing.T) {
	orders := []*order.Order{
		{OrderDate: "2025-02-03T09:00:00Z", CartItems: []order.LineItem{item("A", "Cases", 2, 10)}},
		{OrderDate: "2025-02-04T09:00:00Z", CartItems: []order.LineItem{item("A", "Cases", 3, 15)}},
	}

	got := Aggregate(orders)

	want := Report{
		Rows: []Row{{
			Name:          "A",
			Category:      "Cases",
			TotalQuantity: 5,
			UnitPrice:     d("10"),
			ShippingDate:  "2/3/2025",
			TotalSales:    d("50"),
		}},
		GrandTotal: d("50"),
	}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Errorf("Aggregate() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateSkipsUnresolvedItems(t *testing.T) {
	orders := []*order.Order{
		{CartItems: []order.LineItem{
			item("", "", 4, 100),
			item("Cable", "", 1, 3.5),
		}},
		nil,
		{CartItems: nil},
	}

	got := Aggregate(orders)

	require.Len(t, got.Rows, 1)
	assert.Equal(t, "Cable", got.Rows[0].Name)
	assert.Equal(t, UnknownCategory, got.Rows[0].Category)
	assert.True(t, got.GrandTotal.Equal(d("3.5")), got.GrandTotal.String())
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)
	assert.Empty(t, got.Rows)
	assert.NotNil(t, got.Rows)
	assert.True(t, got.GrandTotal.IsZero())
}

func TestAggregateExactMoney(t *testing.T) {
	orders := []*order.Order{{CartItems: []order.LineItem{item("Strap", "Bands", 3, 0.1)}}}
	got := Aggregate(orders)
	assert.Equal(t, "0.30", got.Rows[0].TotalSales.StringFixed(2))
	assert.True(t, got.Rows[0].TotalSales.Equal(d("0.3")))
}

func TestAggregateProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"A", "B", "C", "D", ""}

	for run := 0; run < 50; run++ {
		var orders []*order.Order
		for i, n := 0, rng.Intn(6); i < n; i++ {
			o := &order.Order{}
			for j, m := 0, rng.Intn(5); j < m; j++ {
				o.CartItems = append(o.CartItems,
					item(names[rng.Intn(len(names))], "", 1+rng.Intn(4), float64(rng.Intn(2000))/100))
			}
			orders = append(orders, o)
		}

		got := Aggregate(orders)

		seen := map[string]bool{}
		sum := decimal.Zero
		for _, row := range got.Rows {
			require.NotEmpty(t, row.Name)
			require.False(t, seen[row.Name], "product %q appears twice", row.Name)
			seen[row.Name] = true
			require.True(t, row.TotalSales.Equal(row.UnitPrice.Mul(decimal.NewFromInt(int64(row.TotalQuantity)))))
			sum = sum.Add(row.TotalSales)
		}
		require.True(t, got.GrandTotal.Equal(sum))
	}
}

type stubOrders struct {
	orders []*order.Order
	err    error
}

func (s stubOrders) ListOrders(context.Context, string) ([]*order.Order, error) {
	return s.orders, s.err
}

func TestReportDegradesOnFetchFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	svc := NewService(stubOrders{err: errors.New("network down")}, zap.New(core))

	report := svc.Report(context.Background())

	assert.Empty(t, report.Rows)
	assert.True(t, report.GrandTotal.IsZero())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "error fetching sales data", logs.All()[0].Message)
}

func TestSalesPageAndPrint(t *testing.T) {
	orders := []*order.Order{{CartItems: []order.LineItem{item("Ring Light", "Lighting", 2, 12.5)}}}
	svc := NewService(stubOrders{orders: orders}, zap.NewNop())
	view, err := web.NewRenderer(zap.NewNop(), nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	h := NewHandler(svc, view)
	h.RegisterRoutes(r)
	r.Route("/api/v1", h.RegisterAPI)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/sales", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ring Light")
	assert.Contains(t, rec.Body.String(), "$25.00")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalQuantity":2`)

	var out strings.Builder
	require.NoError(t, Print(&out, svc.Report(context.Background())))
	assert.Contains(t, out.String(), "Ring Light")
	assert.Contains(t, out.String(), "25.00")
}
