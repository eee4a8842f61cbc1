package product

import "context"

// Repository is the catalog store (Firestore collection "products").
type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	// GetByID returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*Product, error)
}
