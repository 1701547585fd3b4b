package sales

import "github.com/shopspring/decimal"

// UnknownCategory labels rows whose product has no resolvable category.
const UnknownCategory = "Unknown"

// Row summarises every sale of one product. It is derived on each load and
// never stored.
type Row struct {
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	TotalQuantity int             `json:"totalQuantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	ShippingDate  string          `json:"shippingDate"`
	TotalSales    decimal.Decimal `json:"totalSales"`
}

// Report is the sales summary plus its grand total.
type Report struct {
	Rows       []Row           `json:"rows"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}
