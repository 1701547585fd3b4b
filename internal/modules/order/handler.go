package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/georgemunganga/accessories-admin/internal/web"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes order pages and the order JSON API.
type Handler struct {
	service Service
	view    *web.Renderer
	log     *zap.Logger
}

func NewHandler(service Service, view *web.Renderer, log *zap.Logger) *Handler {
	return &Handler{service: service, view: view, log: log}
}

// RegisterRoutes mounts the admin pages. Callers wrap r with the session guard.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/orders", func(r chi.Router) {
		r.Get("/", h.ordersPage)                   // GET  /admin/orders?status=shipped&expand={id}
		r.Post("/{id}/status", h.updateStatusForm) // POST /admin/orders/{id}/status
		r.Get("/{id}/delete", h.confirmDelete)     // GET  /admin/orders/{id}/delete
		r.Post("/{id}/delete", h.deleteForm)       // POST /admin/orders/{id}/delete
	})
}

// RegisterAPI mounts the JSON endpoints relative to the API prefix.
func (h *Handler) RegisterAPI(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)                // GET    /api/v1/orders?status=pending
		r.Get("/{id}", h.getOrder)              // GET    /api/v1/orders/{id}
		r.Patch("/{id}/status", h.updateStatus) // PATCH  /api/v1/orders/{id}/status
		r.Delete("/{id}", h.deleteOrder)        // DELETE /api/v1/orders/{id}
	})
}

// ── pages ────────────────────────────────────────────────────────────────────

type filterLink struct {
	Value  string
	Active bool
}

type orderRow struct {
	Order     *Order
	Expanded  bool
	ToggleURL string
}

type ordersData struct {
	Filter  string
	Filters []filterLink
	Orders  []orderRow
}

func (h *Handler) ordersPage(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("status")
	if filter == "" {
		filter = FilterAll
	}
	expanded := Expanded(r.URL.Query().Get("expand"))

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		h.log.Error("error fetching orders", zap.Error(err))
	}

	data := ordersData{Filter: filter}
	for _, v := range append([]string{FilterAll}, statusValues()...) {
		data.Filters = append(data.Filters, filterLink{Value: v, Active: v == filter})
	}
	for _, o := range orders {
		data.Orders = append(data.Orders, orderRow{
			Order:     o,
			Expanded:  expanded.Is(o.ID),
			ToggleURL: ordersURL(filter, expanded.Toggle(o.ID)),
		})
	}
	h.view.Render(w, r, "orders", web.Page{Title: "Orders", Active: "orders", Data: data})
}

func (h *Handler) updateStatusForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		web.Failure(w, "Error!", "Failed to update order status.")
		web.Redirect(w, r, "/admin/orders")
		return
	}
	filter := r.PostFormValue("filter")

	o, err := h.service.UpdateStatus(r.Context(), id, UpdateStatusRequest{Status: r.PostFormValue("status")})
	if err != nil {
		h.log.Warn("failed to update order status", zap.String("id", id), zap.Error(err))
		web.Failure(w, "Error!", "Failed to update order status.")
	} else if title, msg := StatusNotice(o.Status); msg != "" {
		web.Success(w, title, msg)
	}
	web.Redirect(w, r, ordersURL(filter, ""))
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error("failed to fetch order", zap.Error(err))
		}
		h.view.RenderStatus(w, r, status, "error", web.Page{Title: http.StatusText(status), Data: "Order not available."})
		return
	}
	h.view.Render(w, r, "order_delete", web.Page{Title: "Delete Order", Active: "orders", Data: o})
}

func (h *Handler) deleteForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteOrder(r.Context(), id); err != nil {
		h.log.Error("failed to delete order", zap.String("id", id), zap.Error(err))
		web.Failure(w, "Error!", "Failed to delete order.")
	} else {
		web.Success(w, "Deleted!", "Your order has been deleted.")
	}
	web.Redirect(w, r, "/admin/orders")
}

// ── JSON API ─────────────────────────────────────────────────────────────────

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.jsonError(w, err)
		return
	}
	web.JSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, err)
		return
	}
	web.JSON(w, http.StatusOK, o)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.jsonError(w, err)
		return
	}
	web.JSON(w, http.StatusOK, o)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.jsonError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) jsonError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("order request failed", zap.Error(err))
	}
	web.JSONError(w, status, err.Error())
}

// ── helpers ──────────────────────────────────────────────────────────────────

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, docstore.ErrReferenced):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func statusValues() []string {
	out := make([]string, len(Statuses))
	for i, s := range Statuses {
		out[i] = string(s)
	}
	return out
}

func ordersURL(filter string, expand Expanded) string {
	q := url.Values{}
	if filter != "" && filter != FilterAll {
		q.Set("status", filter)
	}
	if expand != "" {
		q.Set("expand", string(expand))
	}
	if len(q) == 0 {
		return "/admin/orders"
	}
	return "/admin/orders?" + q.Encode()
}
