package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/georgemunganga/accessories-admin/internal/web"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves sign-in and logout.
type Handler struct {
	service      Service
	view         *web.Renderer
	log          *zap.Logger
	secureCookie bool
}

func NewHandler(service Service, view *web.Renderer, log *zap.Logger, secureCookie bool) *Handler {
	return &Handler{service: service, view: view, log: log, secureCookie: secureCookie}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.signInPage)
	r.Post("/signin", h.signIn)
	r.Post("/logout", h.logout)
}

// RegisterAPI mounts the token endpoint relative to the API prefix. It must
// stay outside the guard.
func (h *Handler) RegisterAPI(r chi.Router) {
	r.Post("/auth/login", h.login)
}

type signInData struct {
	Email string
	Error string
}

func (h *Handler) signInPage(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		if _, err := h.service.ParseToken(c.Value); err == nil {
			web.Redirect(w, r, "/admin/dashboard")
			return
		}
	}
	h.view.Render(w, r, "signin", web.Page{Title: "Sign in"})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		web.Redirect(w, r, SignInPath)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	token, err := h.service.Login(r.Context(), email, password)
	if err != nil {
		status, msg := http.StatusUnauthorized, "Invalid email or password"
		if !errors.Is(err, ErrInvalidCredentials) {
			h.log.Error("sign-in failed", zap.Error(err))
			status, msg = http.StatusInternalServerError, "Sign-in is unavailable, please try again"
		}
		h.view.RenderStatus(w, r, status, "signin", web.Page{
			Title: "Sign in",
			Data:  signInData{Email: email, Error: msg},
		})
		return
	}

	h.log.Info("admin signed in", zap.String("email", email))
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.service.TTL()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	web.Redirect(w, r, "/admin/dashboard")
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	web.Redirect(w, r, SignInPath)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		web.JSONError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		h.log.Error("api login failed", zap.Error(err))
		web.JSONError(w, http.StatusInternalServerError, "login unavailable")
		return
	}
	web.JSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_in": int(h.service.TTL().Seconds()),
	})
}
