package memory

import (
	"context"
	"sync"

	cartdom "cosmetica/internal/domain/cart"
)

type CartRepository struct {
	mu     sync.Mutex
	rows   map[string]cartdom.Snapshot
	fail   error
	writes int
}

var _ cartdom.Repository = (*CartRepository)(nil)

func NewCartRepository() *CartRepository {
	return &CartRepository{rows: map[string]cartdom.Snapshot{}}
}

func (r *CartRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

// Get follows the nil policy of the port: (nil, nil) when absent.
func (r *CartRepository) Get(_ context.Context, userID string) (cartdom.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	s, ok := r.rows[userID]
	if !ok {
		return nil, nil
	}
	return append(cartdom.Snapshot{}, s...), nil
}

func (r *CartRepository) Upsert(_ context.Context, userID string, s cartdom.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.writes++
	r.rows[userID] = append(cartdom.Snapshot{}, s...)
	return nil
}

func (r *CartRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.writes++
	delete(r.rows, userID)
	return nil
}

// Writes counts successful Upsert and Delete calls.
func (r *CartRepository) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}
