package dashboard

import (
	"net/http"

	"github.com/georgemunganga/accessories-admin/internal/web"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	view    *web.Renderer
}

func NewHandler(service *Service, view *web.Renderer) *Handler {
	return &Handler{service: service, view: view}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/admin", func(w http.ResponseWriter, r *http.Request) { web.Redirect(w, r, "/admin/dashboard") })
	r.Get("/admin/dashboard", h.dashboardPage)
}

func (h *Handler) dashboardPage(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, "dashboard", web.Page{
		Title:  "Dashboard",
		Active: "dashboard",
		Data:   h.service.Overview(r.Context()),
	})
}
