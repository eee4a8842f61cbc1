package memory

import (
	"context"
	"sync"

	wldom "cosmetica/internal/domain/wishlist"
)

type WishlistRepository struct {
	mu      sync.Mutex
	rows    map[string]wldom.Snapshot
	fail    error
	deletes int
	replace int
}

var _ wldom.Repository = (*WishlistRepository)(nil)

func NewWishlistRepository() *WishlistRepository {
	return &WishlistRepository{rows: map[string]wldom.Snapshot{}}
}

func (r *WishlistRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

func (r *WishlistRepository) Get(_ context.Context, customerID string) (wldom.Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, false, r.fail
	}
	s, ok := r.rows[customerID]
	if !ok || len(s) == 0 {
		return nil, false, nil
	}
	return append(wldom.Snapshot{}, s...), true, nil
}

func (r *WishlistRepository) Replace(_ context.Context, customerID string, s wldom.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.replace++
	r.rows[customerID] = append(wldom.Snapshot{}, s...)
	return nil
}

func (r *WishlistRepository) DeleteEntry(_ context.Context, customerID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.deletes++
	cur := r.rows[customerID]
	out := make(wldom.Snapshot, 0, len(cur))
	for _, e := range cur {
		if e.ProductID != productID {
			out = append(out, e)
		}
	}
	r.rows[customerID] = out
	return nil
}

// Calls returns how many Replace and DeleteEntry calls succeeded.
func (r *WishlistRepository) Calls() (replaces, deletes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replace, r.deletes
}
