package memory

import (
	"context"
	"strings"
	"sync"

	productdom "cosmetica/internal/domain/product"
)

type ProductRepository struct {
	mu    sync.RWMutex
	items []productdom.Product
}

var _ productdom.Repository = (*ProductRepository)(nil)

func NewProductRepository(seed ...productdom.Product) *ProductRepository {
	return &ProductRepository{items: append([]productdom.Product(nil), seed...)}
}

func (r *ProductRepository) List(_ context.Context, f productdom.Filter) ([]productdom.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return productdom.Select(r.items, f), nil
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*productdom.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, productdom.ErrInvalidID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, productdom.ErrNotFound
}
