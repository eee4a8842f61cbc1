package order

import "context"

// Repository reads order history.
// Implementations: Firestore (collection "orders") and PostgreSQL (orders + order_items).
type Repository interface {
	// ListByCustomer returns the customer's orders, newest first.
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
}
