package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidStatus rejects a status outside pending, shipped and delivered.
var ErrInvalidStatus = errors.New("invalid order status")

// Service defines the order management business logic.
type Service interface {
	// ListOrders returns orders newest first, narrowed by a status filter.
	// FilterAll or "" returns every order.
	ListOrders(ctx context.Context, filter string) ([]*Order, error)

	GetOrder(ctx context.Context, id string) (*Order, error)

	// UpdateStatus sets one of the enumerated statuses with a partial patch.
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error)

	DeleteOrder(ctx context.Context, id string) error
}

type service struct {
	repo Repository
	log  *zap.Logger
}

// NewService creates a new order service.
func NewService(repo Repository, log *zap.Logger) Service {
	return &service{repo: repo, log: log}
}

func (s *service) ListOrders(ctx context.Context, filter string) ([]*Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByStatus(orders, filter), nil
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error) {
	status, err := ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	s.log.Info("order status changed", zap.String("id", id), zap.String("status", string(status)))
	return s.repo.GetOrder(ctx, id)
}

func (s *service) DeleteOrder(ctx context.Context, id string) error {
	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	s.log.Info("order deleted", zap.String("id", id))
	return nil
}

// ParseStatus accepts exactly the enumerated statuses, case-insensitively.
func ParseStatus(s string) (OrderStatus, error) {
	want := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if st == want {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// FilterByStatus keeps orders whose status equals filter exactly. FilterAll
// and "" keep every order.
func FilterByStatus(orders []*Order, filter string) []*Order {
	if filter == "" || filter == FilterAll {
		return orders
	}
	out := make([]*Order, 0, len(orders))
	for _, o := range orders {
		if string(o.Status) == filter {
			out = append(out, o)
		}
	}
	return out
}

// StatusNotice is the confirmation shown after a status change, or "" when
// the status has none.
func StatusNotice(status OrderStatus) (title, msg string) {
	switch status {
	case StatusShipped:
		return "Shipped!", "Order has been shipped."
	case StatusDelivered:
		return "Delivered!", "Order has been delivered."
	}
	return "", ""
}

// Expanded tracks the one order whose line items are shown. Selecting the
// expanded order again collapses it.
type Expanded string

// Toggle returns the selection after the operator clicks id.
func (e Expanded) Toggle(id string) Expanded {
	if string(e) == id {
		return ""
	}
	return Expanded(id)
}

func (e Expanded) Is(id string) bool { return e != "" && string(e) == id }
