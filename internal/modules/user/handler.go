package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/georgemunganga/accessories-admin/internal/web"
	"github.com/go-chi/chi/v5"
)

// Handler lets a signed-in admin add and look up admin accounts.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterAPI mounts the endpoints relative to the API prefix. Callers wrap r
// with the session guard.
func (h *Handler) RegisterAPI(router chi.Router) {
	router.Post("/users", h.registerUser)
	router.Get("/users/{id}", h.getUser)
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.RegisterUser(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	switch {
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrPasswordTooWeak):
		web.JSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, ErrEmailTaken):
		web.JSONError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		web.JSONError(w, http.StatusInternalServerError, "could not register user")
		return
	}

	web.JSON(w, http.StatusCreated, user.Public())
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.GetUser(r.Context(), id)
	if errors.Is(err, docstore.ErrNotFound) {
		web.JSONError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		web.JSONError(w, http.StatusInternalServerError, "could not load user")
		return
	}

	web.JSON(w, http.StatusOK, user.Public())
}
