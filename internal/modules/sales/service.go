package sales

import (
	"context"

	"github.com/georgemunganga/accessories-admin/internal/modules/order"
	"go.uber.org/zap"
)

// OrderLister is the part of the order service the report reads from.
type OrderLister interface {
	ListOrders(ctx context.Context, filter string) ([]*order.Order, error)
}

// Service builds the sales summary.
type Service interface {
	// Report aggregates every order. A failed fetch is logged and yields an
	// empty report; it is never returned to the caller.
	Report(ctx context.Context) Report
}

type service struct {
	orders OrderLister
	log    *zap.Logger
}

func NewService(orders OrderLister, log *zap.Logger) Service {
	return &service{orders: orders, log: log}
}

func (s *service) Report(ctx context.Context) Report {
	orders, err := s.orders.ListOrders(ctx, order.FilterAll)
	if err != nil {
		s.log.Error("error fetching sales data", zap.Error(err))
		return Aggregate(nil)
	}
	report := Aggregate(orders)
	s.log.Debug("sales report built",
		zap.Int("orders", len(orders)),
		zap.Int("rows", len(report.Rows)),
		zap.String("grand_total", report.GrandTotal.StringFixed(2)))
	return report
}
