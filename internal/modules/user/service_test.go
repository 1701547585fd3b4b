package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/georgemunganga/accessories-admin/internal/platform/docstore/sqlstore"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (Service, Repository) {
	t.Helper()
	store, err := sqlstore.Open(context.Background(), "sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	repo := NewStoreRepository(store)
	return NewService(repo), repo
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	u, err := svc.RegisterUser(ctx, "  Admin@Example.com ", "correct horse", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", u.Email)
	assert.NotEqual(t, "correct horse", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")))

	byEmail, err := repo.GetUserByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, u.PasswordHash, byEmail.PasswordHash)

	byID, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.FirstName)
}

func TestRegisterUserRejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.RegisterUser(ctx, "", "longenough", "", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = svc.RegisterUser(ctx, "a@b.c", "short", "", "")
	assert.ErrorIs(t, err, ErrPasswordTooWeak)

	_, err = svc.RegisterUser(ctx, "a@b.c", "longenough", "", "")
	require.NoError(t, err)
	_, err = svc.RegisterUser(ctx, "A@B.C", "longenough", "", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetUserUnknown(t *testing.T) {
	svc, repo := newService(t)
	_, err := svc.GetUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	_, err = repo.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestHandlerHidesPasswordHash(t *testing.T) {
	svc, _ := newService(t)
	r := chi.NewRouter()
	NewHandler(svc).RegisterAPI(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"email":"ops@example.com","password":"longenough"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ops@example.com"`)
	assert.NotContains(t, rec.Body.String(), "$2a$")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"email":"ops@example.com","password":"longenough"}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
