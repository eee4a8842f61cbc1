// internal/application/usecase/account/service.go
package account

import (
	"context"
	"errors"
	"log"

	authuc "cosmetica/internal/application/usecase/auth"
	customerdom "cosmetica/internal/domain/customer"
	orderdom "cosmetica/internal/domain/order"
	sessiondom "cosmetica/internal/domain/session"
)

var (
	ErrNotSignedIn = sessiondom.ErrNotSignedIn
	// ErrProfileMissing is the signed-in-without-profile state ("user not found").
	ErrProfileMissing = errors.New("account: profile not found")
)

// Profiles is satisfied by auth.Store.
type Profiles interface {
	Session() sessiondom.Session
	UpdateProfile(ctx context.Context, patch customerdom.Patch) authuc.Result
	UpdateAddress(ctx context.Context, a customerdom.AddressFields) authuc.Result
	RefreshProfile(ctx context.Context) (*customerdom.Profile, error)
}

// Overview is the account page model.
type Overview struct {
	Profile customerdom.Profile `json:"profile"`
	Points  int                 `json:"points"`
}

type Service struct {
	profiles Profiles
	orders   orderdom.Repository
}

func NewService(profiles Profiles, orders orderdom.Repository) *Service {
	return &Service{profiles: profiles, orders: orders}
}

// Overview returns the cached profile; refresh=true re-reads it first.
func (s *Service) Overview(ctx context.Context, refresh bool) (*Overview, error) {
	sess := s.profiles.Session()
	if !sess.IsSignedIn() {
		return nil, ErrNotSignedIn
	}
	p := sess.Profile
	if refresh || p == nil {
		fresh, err := s.profiles.RefreshProfile(ctx)
		switch {
		case err == nil:
			p = fresh
		case errors.Is(err, customerdom.ErrNotFound):
			return nil, ErrProfileMissing
		default:
			// stale cache is better than no page
			log.Printf("[account] refresh profile failed uid=%s err=%v", sess.UID(), err)
		}
	}
	if p == nil {
		return nil, ErrProfileMissing
	}
	return &Overview{Profile: *p, Points: p.LoyaltyPoints}, nil
}

// Points is the loyalty balance of the signed-in customer.
func (s *Service) Points() (int, error) {
	sess := s.profiles.Session()
	if !sess.IsSignedIn() {
		return 0, ErrNotSignedIn
	}
	if sess.Profile == nil {
		return 0, ErrProfileMissing
	}
	return sess.Profile.LoyaltyPoints, nil
}

// Orders lists the customer's order history, newest first.
func (s *Service) Orders(ctx context.Context) ([]orderdom.Order, error) {
	uid := s.profiles.Session().UID()
	if uid == "" {
		return nil, ErrNotSignedIn
	}
	list, err := s.orders.ListByCustomer(ctx, uid)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Total == 0 {
			list[i].Total = list[i].ItemsTotal()
		}
	}
	return list, nil
}

func (s *Service) UpdateProfile(ctx context.Context, patch customerdom.Patch) authuc.Result {
	return s.profiles.UpdateProfile(ctx, patch)
}

func (s *Service) UpdateAddress(ctx context.Context, a customerdom.AddressFields) authuc.Result {
	return s.profiles.UpdateAddress(ctx, a)
}
