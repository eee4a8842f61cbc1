package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	orderdom "cosmetica/internal/domain/order"
)

type OrderRepository struct {
	mu   sync.RWMutex
	rows []orderdom.Order
}

var _ orderdom.Repository = (*OrderRepository)(nil)

func NewOrderRepository(seed ...orderdom.Order) *OrderRepository {
	return &OrderRepository{rows: append([]orderdom.Order(nil), seed...)}
}

// Add stores o (used to seed history in development).
func (r *OrderRepository) Add(o orderdom.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, o)
}

func (r *OrderRepository) ListByCustomer(_ context.Context, customerID string) ([]orderdom.Order, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, orderdom.ErrInvalidCustomerID
	}

	r.mu.RLock()
	out := make([]orderdom.Order, 0)
	for _, o := range r.rows {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
