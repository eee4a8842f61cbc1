package wishlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"cosmetica/internal/adapters/out/memory"
	"cosmetica/internal/application/persist"
	customerdom "cosmetica/internal/domain/customer"
	sessiondom "cosmetica/internal/domain/session"
	wldom "cosmetica/internal/domain/wishlist"
)

func signedIn(uid string) sessiondom.Session {
	return sessiondom.SignedIn(sessiondom.Identity{UID: uid}, customerdom.Profile{ID: uid})
}

func entry(id string) wldom.Entry {
	return wldom.Entry{ProductID: id, Name: "Product " + id, Price: 12}
}

func newStore(t *testing.T, policy persist.ReconcilePolicy) (*Store, *memory.Local[wldom.Snapshot], *memory.WishlistRepository) {
	t.Helper()
	local := memory.NewLocal[wldom.Snapshot]()
	remote := memory.NewWishlistRepository()
	s := NewStore(local, remote, Options{Policy: policy, Debounce: 10 * time.Millisecond, Timeout: time.Second})
	t.Cleanup(s.Close)
	return s, local, remote
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestAdd_Idempotent(t *testing.T) {
	s, _, _ := newStore(t, persist.PreferRemote)
	s.Load(context.Background(), sessiondom.SignedOut())

	if added, err := s.Add(entry("a")); err != nil || !added {
		t.Fatalf("first add: %v %v", added, err)
	}
	if added, err := s.Add(entry("a")); err != nil || added {
		t.Fatalf("second add should be a no-op: %v %v", added, err)
	}
	if s.Count() != 1 || !s.IsMember("a") {
		t.Fatalf("count = %d", s.Count())
	}
}

func TestToggle(t *testing.T) {
	s, local, _ := newStore(t, persist.PreferRemote)
	s.Load(context.Background(), sessiondom.SignedOut())

	member, err := s.Toggle(entry("a"))
	if err != nil || !member {
		t.Fatalf("toggle on: %v %v", member, err)
	}
	member, err = s.Toggle(entry("a"))
	if err != nil || member {
		t.Fatalf("toggle off: %v %v", member, err)
	}
	stored, _ := local.Load()
	if len(stored) != 0 {
		t.Fatalf("local = %+v, want empty", stored)
	}
}

func TestSignIn_RemoteAbsent_PushesLocal(t *testing.T) {
	s, local, remote := newStore(t, persist.PreferRemote)
	_ = local.Save(wldom.Snapshot{entry("a"), entry("b")})

	s.Load(context.Background(), sessiondom.SignedOut())
	s.OnSessionChange(sessiondom.SignedOut(), signedIn("u1"))

	got, present, err := remote.Get(context.Background(), "u1")
	if err != nil || !present || len(got) != 2 {
		t.Fatalf("remote = %+v present=%v err=%v", got, present, err)
	}
}

func TestSignIn_RemotePresent_Wins(t *testing.T) {
	s, local, remote := newStore(t, persist.PreferRemote)
	_ = local.Save(wldom.Snapshot{entry("a")})
	_ = remote.Replace(context.Background(), "u1", wldom.Snapshot{entry("z")})

	s.Load(context.Background(), sessiondom.SignedOut())
	s.OnSessionChange(sessiondom.SignedOut(), signedIn("u1"))

	if s.IsMember("a") || !s.IsMember("z") {
		t.Fatalf("entries = %+v, want [z]", s.Entries())
	}
}

func TestRemove_SingleRemovalUsesDeleteEntry(t *testing.T) {
	s, _, remote := newStore(t, persist.PreferRemote)
	_ = remote.Replace(context.Background(), "u1", wldom.Snapshot{entry("a"), entry("b")})
	s.Load(context.Background(), signedIn("u1"))
	baseReplaces, baseDeletes := remote.Calls()

	if !s.Remove("a") {
		t.Fatalf("remove reported absent")
	}
	flush(t, s)

	replaces, deletes := remote.Calls()
	if deletes-baseDeletes != 1 || replaces != baseReplaces {
		t.Fatalf("replaces +%d deletes +%d, want one DeleteEntry", replaces-baseReplaces, deletes-baseDeletes)
	}
	got, _, _ := remote.Get(context.Background(), "u1")
	if len(got) != 1 || got[0].ProductID != "b" {
		t.Fatalf("remote = %+v", got)
	}

	_, _ = s.Add(entry("c"))
	flush(t, s)
	replaces, _ = remote.Calls()
	if replaces-baseReplaces != 1 {
		t.Fatalf("add should write the full snapshot")
	}
}

func TestSignIn_FailedRemoteRead_NextWriteMerges(t *testing.T) {
	s, local, remote := newStore(t, persist.PreferRemote)
	_ = remote.Replace(context.Background(), "u1", wldom.Snapshot{entry("b")})
	_ = local.Save(wldom.Snapshot{entry("a")})

	s.Load(context.Background(), sessiondom.SignedOut())
	remote.FailWith(errors.New("unavailable"))
	s.OnSessionChange(sessiondom.SignedOut(), signedIn("u1"))
	remote.FailWith(nil)

	if _, err := s.Add(entry("c")); err != nil {
		t.Fatalf("add: %v", err)
	}
	flush(t, s)

	got, _, _ := remote.Get(context.Background(), "u1")
	ids := map[string]bool{}
	for _, e := range got {
		ids[e.ProductID] = true
	}
	if len(ids) != 3 || !ids["a"] || !ids["b"] || !ids["c"] {
		t.Fatalf("remote = %+v, want a, b and c", got)
	}
	if !s.IsMember("b") || s.Count() != 3 {
		t.Fatalf("entries = %+v", s.Entries())
	}
}

func TestRefresh_KeepsEntriesNeverPushed(t *testing.T) {
	s, local, remote := newStore(t, persist.PreferRemote)
	_ = remote.Replace(context.Background(), "u1", wldom.Snapshot{entry("b")})
	_ = local.Save(wldom.Snapshot{entry("a")})
	remote.FailWith(errors.New("unavailable"))
	s.Load(context.Background(), signedIn("u1"))
	remote.FailWith(nil)

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !s.IsMember("a") || !s.IsMember("b") {
		t.Fatalf("entries = %+v, want a and b", s.Entries())
	}
	flush(t, s)
	got, _, _ := remote.Get(context.Background(), "u1")
	if len(got) != 2 {
		t.Fatalf("remote = %+v", got)
	}
}

func TestLogout_KeepsEntries(t *testing.T) {
	s, _, _ := newStore(t, persist.PreferRemote)
	s.Load(context.Background(), signedIn("u1"))
	_, _ = s.Add(entry("a"))

	s.OnSessionChange(signedIn("u1"), sessiondom.SignedOut())
	if !s.IsMember("a") {
		t.Fatalf("wishlist should survive logout")
	}
}

func TestRefresh_ReadsServerList(t *testing.T) {
	s, _, remote := newStore(t, persist.PreferRemote)
	if err := s.Refresh(context.Background()); err != sessiondom.ErrNotSignedIn {
		t.Fatalf("refresh signed out: err = %v", err)
	}

	s.Load(context.Background(), signedIn("u1"))
	_ = remote.Replace(context.Background(), "u1", wldom.Snapshot{entry("x"), entry("y")})

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if s.Count() != 2 || !s.IsMember("y") {
		t.Fatalf("entries = %+v", s.Entries())
	}
}
