package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"cosmetica/internal/adapters/out/memory"
	authuc "cosmetica/internal/application/usecase/auth"
	customerdom "cosmetica/internal/domain/customer"
	orderdom "cosmetica/internal/domain/order"
	sessiondom "cosmetica/internal/domain/session"
)

type fakeProfiles struct {
	sess       sessiondom.Session
	refreshErr error
}

func (f *fakeProfiles) Session() sessiondom.Session { return f.sess }
func (f *fakeProfiles) UpdateProfile(context.Context, customerdom.Patch) authuc.Result {
	return authuc.Result{Success: true}
}
func (f *fakeProfiles) UpdateAddress(context.Context, customerdom.AddressFields) authuc.Result {
	return authuc.Result{Success: true}
}
func (f *fakeProfiles) RefreshProfile(context.Context) (*customerdom.Profile, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.sess.Profile, nil
}

func TestOrders_SignedOut(t *testing.T) {
	svc := NewService(&fakeProfiles{sess: sessiondom.SignedOut()}, memory.NewOrderRepository())
	if _, err := svc.Orders(context.Background()); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("err = %v, want ErrNotSignedIn", err)
	}
}

func TestOrders_NewestFirstWithComputedTotals(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := memory.NewOrderRepository(
		orderdom.Order{ID: "o1", CustomerID: "u1", CreatedAt: t0, Items: []orderdom.Item{{UnitPrice: 4.5, Quantity: 2}}},
		orderdom.Order{ID: "o2", CustomerID: "u1", CreatedAt: t0.Add(time.Hour), Total: 30},
		orderdom.Order{ID: "o3", CustomerID: "someone-else", CreatedAt: t0},
	)
	sess := sessiondom.SignedIn(sessiondom.Identity{UID: "u1"}, customerdom.Profile{ID: "u1"})
	svc := NewService(&fakeProfiles{sess: sess}, repo)

	got, err := svc.Orders(context.Background())
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if len(got) != 2 || got[0].ID != "o2" || got[1].Total != 9 {
		t.Fatalf("orders = %+v", got)
	}
}

func TestOverview_MissingProfile(t *testing.T) {
	sess := sessiondom.Session{Identity: &sessiondom.Identity{UID: "u1"}}
	svc := NewService(&fakeProfiles{sess: sess, refreshErr: customerdom.ErrNotFound}, memory.NewOrderRepository())

	if _, err := svc.Overview(context.Background(), false); !errors.Is(err, ErrProfileMissing) {
		t.Fatalf("err = %v, want ErrProfileMissing", err)
	}
}

func TestPoints(t *testing.T) {
	sess := sessiondom.SignedIn(sessiondom.Identity{UID: "u1"}, customerdom.Profile{ID: "u1", LoyaltyPoints: 420})
	svc := NewService(&fakeProfiles{sess: sess}, memory.NewOrderRepository())

	pts, err := svc.Points()
	if err != nil || pts != 420 {
		t.Fatalf("points = %d err=%v", pts, err)
	}
	ov, err := svc.Overview(context.Background(), true)
	if err != nil || ov.Points != 420 {
		t.Fatalf("overview = %+v err=%v", ov, err)
	}
}
