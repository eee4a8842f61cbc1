package localstore

import "testing"

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNamespace_IsolatesDevices(t *testing.T) {
	s := openTemp(t)
	a, b := s.Device("dev-a"), s.Device("dev-b")

	if err := a.Set("cart", []byte(`[1]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := b.Get("cart"); ok {
		t.Fatalf("device b sees device a's cart")
	}
	v, ok, err := a.Get("cart")
	if err != nil || !ok || string(v) != `[1]` {
		t.Fatalf("get = %q %v %v", v, ok, err)
	}
}

func TestNamespace_Clear(t *testing.T) {
	s := openTemp(t)
	a := s.Device("dev-a")
	_ = a.Set("cart", []byte("x"))
	_ = a.Set("wishlist", []byte("y"))
	_ = s.Device("dev-ab").Set("cart", []byte("z"))

	if err := a.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if keys, _ := s.Keys("device/dev-a/"); len(keys) != 0 {
		t.Fatalf("keys left = %v", keys)
	}
	if _, ok, _ := s.Device("dev-ab").Get("cart"); !ok {
		t.Fatalf("clearing dev-a must not touch dev-ab")
	}
}

func TestGet_MissingKey(t *testing.T) {
	s := openTemp(t)
	v, ok, err := s.Get("nope")
	if err != nil || ok || v != nil {
		t.Fatalf("got %q %v %v", v, ok, err)
	}
	if _, _, err := s.Get(""); err != ErrEmptyKey {
		t.Fatalf("err = %v, want ErrEmptyKey", err)
	}
}

func TestUpperBound(t *testing.T) {
	if got := string(upperBound([]byte("ab"))); got != "ac" {
		t.Fatalf("upperBound(ab) = %q", got)
	}
	if got := upperBound([]byte{0xff, 0xff}); got != nil {
		t.Fatalf("upperBound(ffff) = %v, want nil", got)
	}
}
