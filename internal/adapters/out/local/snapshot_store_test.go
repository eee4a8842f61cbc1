package local

import (
	"errors"
	"testing"

	cartdom "cosmetica/internal/domain/cart"
	wldom "cosmetica/internal/domain/wishlist"
	"cosmetica/internal/infra/localstore"
)

func openDevice(t *testing.T, id string) *localstore.Namespace {
	t.Helper()
	st, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st.Device(id)
}

func TestCartStore_RoundTripAndEmpty(t *testing.T) {
	ns := openDevice(t, "dev-1")
	s := NewCartStore(ns)

	got, err := s.Load()
	if err != nil || got != nil {
		t.Fatalf("empty slot = %+v err=%v, want nil,nil", got, err)
	}

	want := cartdom.Snapshot{
		{ProductID: "p1", Name: "Serum", UnitPrice: 29.9, Quantity: 2},
		{ProductID: "p2", Name: "Toner", UnitPrice: 12, Image: "toner.jpg", Quantity: 1},
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = s.Load()
	if err != nil || !cartdom.Equal(got, want) {
		t.Fatalf("load = %+v err=%v", got, err)
	}

	raw, _, _ := ns.Get(SlotCart)
	if string(raw[:12]) != `{"version":1` {
		t.Fatalf("stored bytes not enveloped: %s", raw)
	}
}

func TestWishlistStore_AcceptsLegacyArray(t *testing.T) {
	ns := openDevice(t, "dev-1")
	if err := ns.Set(SlotWishlist, []byte(`[{"productId":"a","name":"Lip Oil","price":18}]`)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := NewWishlistStore(ns).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !wldom.Equal(got, wldom.Snapshot{{ProductID: "a", Name: "Lip Oil", Price: 18}}) {
		t.Fatalf("got %+v", got)
	}
}

func TestLoad_RejectsNewerVersionAndGarbage(t *testing.T) {
	ns := openDevice(t, "dev-1")
	s := NewCartStore(ns)

	_ = ns.Set(SlotCart, []byte(`{"version":2,"items":[]}`))
	if _, err := s.Load(); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("err = %v, want ErrUnsupportedVersion", err)
	}

	_ = ns.Set(SlotCart, []byte(`{not json`))
	if _, err := s.Load(); err == nil {
		t.Fatalf("garbage should fail to load")
	}
}

func TestSlotsAreIsolatedPerDevice(t *testing.T) {
	st, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()

	a, b := NewCartStore(st.Device("a")), NewCartStore(st.Device("b"))
	_ = a.Save(cartdom.Snapshot{{ProductID: "p1", Quantity: 1}})

	if got, _ := b.Load(); got != nil {
		t.Fatalf("device b sees %+v", got)
	}
}

func TestTokenStore(t *testing.T) {
	ts := NewTokenStore(openDevice(t, "dev-1"))

	if tok, err := ts.LoadToken(); err != nil || tok != "" {
		t.Fatalf("empty = %q err=%v", tok, err)
	}
	_ = ts.SaveToken("cookie-123")
	if tok, _ := ts.LoadToken(); tok != "cookie-123" {
		t.Fatalf("token = %q", tok)
	}
	_ = ts.DeleteToken()
	if tok, _ := ts.LoadToken(); tok != "" {
		t.Fatalf("token after delete = %q", tok)
	}
}
