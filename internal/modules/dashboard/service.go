// Package dashboard builds the landing page overview from the other modules.
package dashboard

import (
	"context"

	"github.com/georgemunganga/accessories-admin/internal/modules/catalog"
	"github.com/georgemunganga/accessories-admin/internal/modules/order"
	"github.com/georgemunganga/accessories-admin/internal/web"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StatusCount is the number of orders in one status.
type StatusCount struct {
	Label string
	Count int
}

// Overview is what the dashboard page shows.
type Overview struct {
	Orders       int
	StatusCounts []StatusCount
	Products     int
	OutOfStock   int
	Categories   int
	Revenue      decimal.Decimal
}

type OrderLister interface {
	ListOrders(ctx context.Context, filter string) ([]*order.Order, error)
}

type CatalogLister interface {
	ListProducts(ctx context.Context, categoryID string) ([]*catalog.Product, error)
	ListCategories(ctx context.Context) ([]*catalog.Category, error)
}

type Service struct {
	orders  OrderLister
	catalog CatalogLister
	log     *zap.Logger
}

func NewService(orders OrderLister, catalog CatalogLister, log *zap.Logger) *Service {
	return &Service{orders: orders, catalog: catalog, log: log}
}

// Overview fetches orders, products and categories concurrently. A failed
// fetch is logged and leaves its figures at zero.
func (s *Service) Overview(ctx context.Context) Overview {
	var (
		orders     []*order.Order
		products   []*catalog.Product
		categories []*catalog.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if orders, err = s.orders.ListOrders(gctx, order.FilterAll); err != nil {
			s.log.Warn("dashboard: fetch orders", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if products, err = s.catalog.ListProducts(gctx, catalog.AllCategories); err != nil {
			s.log.Warn("dashboard: fetch products", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categories, err = s.catalog.ListCategories(gctx); err != nil {
			s.log.Warn("dashboard: fetch categories", zap.Error(err))
		}
		return nil
	})
	_ = g.Wait()

	ov := Overview{
		Orders:     len(orders),
		Products:   len(products),
		Categories: len(categories),
		Revenue:    decimal.Zero,
	}

	counts := map[order.OrderStatus]int{}
	for _, o := range orders {
		counts[o.Status]++
		ov.Revenue = ov.Revenue.Add(decimal.NewFromFloat(o.GrandTotal))
	}
	for _, st := range order.Statuses {
		ov.StatusCounts = append(ov.StatusCounts, StatusCount{Label: web.Title(string(st)), Count: counts[st]})
	}
	if n := counts[""]; n > 0 {
		ov.StatusCounts = append(ov.StatusCounts, StatusCount{Label: "No status", Count: n})
	}

	for _, p := range products {
		if !p.InStock() {
			ov.OutOfStock++
		}
	}
	return ov
}
