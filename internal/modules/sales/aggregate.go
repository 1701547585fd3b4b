package sales

import (
	"github.com/georgemunganga/accessories-admin/internal/modules/order"
	"github.com/georgemunganga/accessories-admin/internal/web"
	"github.com/shopspring/decimal"
)

// Aggregate groups line items by product name. A row keeps the unit price and
// order date of the first line item seen for its product; its total is always
// TotalQuantity × UnitPrice. Line items without a resolved product are skipped.
// Rows come out in first-seen order.
func Aggregate(orders []*order.Order) Report {
	index := map[string]int{}
	rows := []Row{}

	for _, o := range orders {
		if o == nil {
			continue
		}
		for _, item := range o.CartItems {
			if item.Product == nil || item.Product.Name == "" {
				continue
			}
			name := item.Product.Name

			i, ok := index[name]
			if !ok {
				category := item.Product.CategoryName
				if category == "" {
					category = UnknownCategory
				}
				rows = append(rows, Row{
					Name:         name,
					Category:     category,
					UnitPrice:    decimal.NewFromFloat(item.Price),
					ShippingDate: web.Date(o.Placed()),
					TotalSales:   decimal.Zero,
				})
				i = len(rows) - 1
				index[name] = i
			}

			row := &rows[i]
			row.TotalQuantity += item.Quantity
			row.TotalSales = row.UnitPrice.Mul(decimal.NewFromInt(int64(row.TotalQuantity)))
		}
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.TotalSales)
	}
	return Report{Rows: rows, GrandTotal: total}
}
