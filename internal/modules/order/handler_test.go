package order

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/georgemunganga/accessories-admin/internal/web"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()
	f := newFixture(t)
	f.seed(t)
	log := zaptest.NewLogger(t)
	view, err := web.NewRenderer(log, nil)
	require.NoError(t, err)

	h := NewHandler(f.svc, view, log)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Route("/api/v1", h.RegisterAPI)
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestOrdersPageExpandsOneOrder(t *testing.T) {
	r := newRouter(t)

	rec := get(r, "/admin/orders")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Phone Case")

	rec = get(r, "/admin/orders?expand=order-1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Phone Case")
	assert.NotContains(t, body, "Cable", "only the selected order is expanded")
}

func TestOrdersPageFilter(t *testing.T) {
	r := newRouter(t)
	rec := get(r, "/admin/orders?status=shipped")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Alan")
	assert.NotContains(t, body, "Lovelace")
}

func TestUpdateStatusFormNotifies(t *testing.T) {
	r := newRouter(t)

	form := url.Values{"status": {"shipped"}, "filter": {"pending"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/orders/order-1/status", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/orders?status=pending", rec.Header().Get("Location"))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	f := web.PopFlash(httptest.NewRecorder(), next)
	require.NotNil(t, f)
	assert.Equal(t, "Order has been shipped.", f.Message)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	r := newRouter(t)

	rec := get(r, "/admin/orders/order-2/delete")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Are you sure?")

	// Viewing the confirmation deletes nothing.
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/orders/order-2").Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/orders/order-2/delete", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/v1/orders/order-2").Code)
}

func TestAPIUpdateStatusRejectsUnknown(t *testing.T) {
	r := newRouter(t)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/order-1/status", strings.NewReader(`{"status":"lost"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
