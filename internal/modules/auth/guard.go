package auth

import (
	"net/http"
	"strings"

	"github.com/georgemunganga/accessories-admin/internal/web"
	"go.uber.org/zap"
)

// CookieName holds the session token.
const CookieName = "admin_session"

// SignInPath is where unauthenticated visitors are sent.
const SignInPath = "/"

type guardState int

const (
	checking guardState = iota
	authorized
	redirecting
)

func (s guardState) String() string {
	switch s {
	case authorized:
		return "authorized"
	case redirecting:
		return "redirecting"
	}
	return "checking"
}

// Guard gates admin pages and API routes on a valid session cookie.
type Guard struct {
	service Service
	log     *zap.Logger
}

func NewGuard(service Service, log *zap.Logger) *Guard {
	return &Guard{service: service, log: log}
}

// check moves a request out of the checking state. The token comes from the
// session cookie or, for API clients, a bearer Authorization header.
func (g *Guard) check(r *http.Request) (Session, guardState) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if c, err := r.Cookie(CookieName); err == nil {
		token = c.Value
	}
	s, err := g.service.ParseToken(token)
	if err != nil {
		return Session{}, redirecting
	}
	return s, authorized
}

// Pages lets authorized requests through with the session in their context.
// Everyone else gets a bare redirect to the sign-in page and no body.
func (g *Guard) Pages(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, state := g.check(r)
		if state != authorized {
			g.log.Debug("session guard", zap.String("path", r.URL.Path), zap.Stringer("state", state))
			w.Header().Set("Location", SignInPath)
			w.Header().Set("Cache-Control", "no-store")
			w.WriteHeader(http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// API is Pages for JSON routes: unauthenticated requests get a 401 body.
func (g *Guard) API(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, state := g.check(r)
		if state != authorized {
			web.JSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// CurrentUser reports the signed-in email for page layouts.
func CurrentUser(r *http.Request) string {
	s, ok := FromContext(r.Context())
	if !ok {
		return ""
	}
	return s.Email
}
