package order

import "context"

// Repository defines data access for orders.
type Repository interface {
	// ListOrders returns every order newest first, with line item products resolved.
	ListOrders(ctx context.Context) ([]*Order, error)

	// GetOrder retrieves one order with its line item products resolved.
	GetOrder(ctx context.Context, id string) (*Order, error)

	// SetStatus patches the status field only.
	SetStatus(ctx context.Context, id string, status OrderStatus) error

	DeleteOrder(ctx context.Context, id string) error
}
