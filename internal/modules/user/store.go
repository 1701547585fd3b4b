package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
)

type storeRepository struct {
	client docstore.Client
}

// NewStoreRepository creates a user repository over the document store.
func NewStoreRepository(client docstore.Client) Repository {
	return &storeRepository{client: client}
}

func (r *storeRepository) CreateUser(ctx context.Context, u *User) error {
	doc, err := r.client.Create(ctx, docstore.NewDocument(AdminType, u.ID, map[string]any{
		"email":        u.Email,
		"passwordHash": u.PasswordHash,
		"firstName":    u.FirstName,
		"lastName":     u.LastName,
	}))
	if err != nil {
		return err
	}
	u.ID, u.CreatedAt, u.UpdatedAt = doc.ID, doc.CreatedAt, doc.UpdatedAt
	return nil
}

func (r *storeRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	docs, err := r.client.Query(ctx, docstore.Query{
		Type:  AdminType,
		Match: map[string]string{"email": normalizeEmail(email)},
		Order: docstore.OrderCreatedAsc,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("user %s: %w", email, docstore.ErrNotFound)
	}
	u := &User{}
	if err := docs[0].Decode(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *storeRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	doc, err := r.client.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Type != AdminType {
		return nil, fmt.Errorf("user %s: %w", id, docstore.ErrNotFound)
	}
	u := &User{}
	if err := doc.Decode(u); err != nil {
		return nil, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
