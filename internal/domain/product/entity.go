// internal/domain/product/entity.go
package product

import (
	"errors"
	"strings"
	"time"
)

// Product is the catalog read model used by listing and detail views.
type Product struct {
	ID          string    `json:"id" firestore:"-"`
	Name        string    `json:"name" firestore:"name"`
	Brand       string    `json:"brand" firestore:"brand"`
	Category    string    `json:"category" firestore:"category"`
	Description string    `json:"description" firestore:"description"`
	Price       float64   `json:"price" firestore:"price"`
	Image       string    `json:"image" firestore:"image"`
	Images      []string  `json:"images,omitempty" firestore:"images"`
	InStock     bool      `json:"inStock" firestore:"inStock"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}

var (
	ErrNotFound  = errors.New("product: not found")
	ErrInvalidID = errors.New("product: invalid id")
)

// SortKey selects listing order.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortName      SortKey = "name"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
)

// Filter narrows a listing. Empty fields mean "any".
type Filter struct {
	Category string
	Brand    string
	Sort     SortKey
	Limit    int
}

// ParseSort maps a query value to a SortKey (unknown -> newest).
func ParseSort(v string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(v))) {
	case SortName:
		return SortName
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	default:
		return SortNewest
	}
}
