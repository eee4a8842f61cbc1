// internal/domain/order/entity.go
package order

import (
	"errors"
	"math"
	"time"
)

// Item is a line item snapshot stored inside an order.
type Item struct {
	ProductID string  `json:"productId" firestore:"productId"`
	Name      string  `json:"name" firestore:"name"`
	UnitPrice float64 `json:"unitPrice" firestore:"unitPrice"`
	Quantity  int     `json:"quantity" firestore:"quantity"`
	Image     string  `json:"image" firestore:"image"`
}

// Order is a historical order, read-only from the storefront's perspective.
type Order struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	Status     string    `json:"status"`
	Total      float64   `json:"total"`
	Items      []Item    `json:"items"`
	CreatedAt  time.Time `json:"createdAt"`
}

var (
	ErrNotFound          = errors.New("order: not found")
	ErrInvalidCustomerID = errors.New("order: invalid customerId")
)

// ItemsTotal recomputes Σ unitPrice × quantity (used when a stored total is missing).
func (o Order) ItemsTotal() float64 {
	sum := 0.0
	for _, it := range o.Items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	return math.Round(sum*100) / 100
}

// ItemCount is the sum of quantities.
func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
