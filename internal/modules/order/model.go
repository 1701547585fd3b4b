package order

import (
	"strings"
	"time"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
)

// ShippingType is the document type the storefront writes orders as.
const ShippingType = "shipping"

// OrderStatus is the fulfilment state set by an operator. The zero value means
// no status has been set yet.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
)

// Statuses lists the valid targets of a status change.
var Statuses = []OrderStatus{StatusPending, StatusShipped, StatusDelivered}

// FilterAll selects every order regardless of status.
const FilterAll = "All"

// Order is a shipping record placed by the storefront.
type Order struct {
	ID            string      `json:"_id"`
	FirstName     string      `json:"firstName"`
	LastName      string      `json:"lastName"`
	Email         string      `json:"email"`
	ContactNumber string      `json:"contactNumber"`
	Address       string      `json:"address"`
	City          string      `json:"city"`
	Province      string      `json:"province"`
	PostalCode    string      `json:"postalCode"`
	PaymentMethod string      `json:"paymentMethod"`
	GrandTotal    float64     `json:"grandTotal"`
	OrderDate     string      `json:"orderDate"`
	Status        OrderStatus `json:"status"`
	CartItems     []LineItem  `json:"cartItems"`
	CreatedAt     time.Time   `json:"_createdAt"`
}

// LineItem is one product, quantity and price entry of the cart snapshot.
// Price is the unit price at the time of the order.
type LineItem struct {
	Ref      *docstore.Reference `json:"product,omitempty"`
	Quantity int                 `json:"quantity"`
	Price    float64             `json:"price"`

	// Product is filled from Ref when the order is read; nil when the
	// reference is missing or dangling.
	Product *ProductSummary `json:"resolvedProduct,omitempty"`
}

// ProductSummary is the part of a product an order view needs.
type ProductSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CategoryName string `json:"categoryName,omitempty"`
}

// Placed returns the order timestamp. orderDate is written by the storefront
// and falls back to the document creation time when missing or unparsable.
func (o Order) Placed() time.Time {
	s := strings.TrimSpace(o.OrderDate)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return o.CreatedAt
}

func (o Order) CustomerName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// UpdateStatusRequest is the payload for changing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
