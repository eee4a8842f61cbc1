package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	customerdom "cosmetica/internal/domain/customer"
)

type CustomerRepository struct {
	mu   sync.RWMutex
	rows map[string]customerdom.Profile
	fail error
}

var _ customerdom.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(seed ...customerdom.Profile) *CustomerRepository {
	r := &CustomerRepository{rows: map[string]customerdom.Profile{}}
	for _, p := range seed {
		r.rows[p.ID] = p
	}
	return r
}

// FailWith makes every call return err until cleared with nil.
func (r *CustomerRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

func (r *CustomerRepository) GetByID(_ context.Context, id string) (*customerdom.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.fail != nil {
		return nil, r.fail
	}
	p, ok := r.rows[strings.TrimSpace(id)]
	if !ok {
		return nil, customerdom.ErrNotFound
	}
	return &p, nil
}

func (r *CustomerRepository) Upsert(_ context.Context, p customerdom.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.rows[p.ID] = p
	return nil
}

func (r *CustomerRepository) Update(_ context.Context, id string, patch customerdom.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	p, ok := r.rows[id]
	if !ok {
		return customerdom.ErrNotFound
	}
	next, err := p.Apply(patch, time.Now())
	if err != nil {
		return err
	}
	r.rows[id] = next
	return nil
}

// SetPoints changes a stored balance the way an external process would.
func (r *CustomerRepository) SetPoints(id string, points int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.rows[id]; ok {
		p.LoyaltyPoints = points
		r.rows[id] = p
	}
}

// Len is the number of stored profiles.
func (r *CustomerRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
