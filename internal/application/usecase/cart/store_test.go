package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cosmetica/internal/adapters/out/memory"
	"cosmetica/internal/application/persist"
	cartdom "cosmetica/internal/domain/cart"
	customerdom "cosmetica/internal/domain/customer"
	sessiondom "cosmetica/internal/domain/session"
)

func signedIn(uid string) sessiondom.Session {
	return sessiondom.SignedIn(
		sessiondom.Identity{UID: uid, Email: uid + "@example.com"},
		customerdom.Profile{ID: uid, Email: uid + "@example.com"},
	)
}

type fixture struct {
	store  *Store
	local  *memory.Local[cartdom.Snapshot]
	remote *memory.CartRepository
}

func newFixture(t *testing.T, policy persist.ReconcilePolicy) fixture {
	t.Helper()
	local := memory.NewLocal[cartdom.Snapshot]()
	remote := memory.NewCartRepository()
	s := NewStore(local, remote, Options{
		Policy:   policy,
		Debounce: 10 * time.Millisecond,
		Timeout:  time.Second,
	})
	t.Cleanup(s.Close)
	return fixture{store: s, local: local, remote: remote}
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func line(id string, qty int) cartdom.Line {
	return cartdom.Line{ProductID: id, Name: "Product " + id, UnitPrice: 10, Quantity: qty}
}

func TestSignIn_RemoteAbsent_PushesLocal(t *testing.T) {
	f := newFixture(t, persist.PreferRemote)
	_ = f.local.Save(cartdom.Snapshot{line("1", 2)})

	f.store.Load(context.Background(), sessiondom.SignedOut())
	f.store.OnSessionChange(sessiondom.SignedOut(), signedIn("u1"))

	remote, err := f.remote.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("remote get: %v", err)
	}
	if len(remote) != 1 || remote[0].ProductID != "1" || remote[0].Quantity != 2 {
		t.Fatalf("remote = %+v, want [{1 x2}]", remote)
	}
	if got := f.store.Lines(); len(got) != 1 || got[0].Quantity != 2 {
		t.Fatalf("in-memory = %+v", got)
	}
}

func TestSignIn_RemotePresent_OverwritesLocal(t *testing.T) {
	f := newFixture(t, persist.PreferRemote)
	_ = f.local.Save(cartdom.Snapshot{line("1", 2)})
	_ = f.remote.Upsert(context.Background(), "u1", cartdom.Snapshot{line("2", 1)})

	f.store.Load(context.Background(), sessiondom.SignedOut())
	f.store.OnSessionChange(sessiondom.SignedOut(), signedIn("u1"))

	got := f.store.Lines()
	if len(got) != 1 || got[0].ProductID != "2" || got[0].Quantity != 1 {
		t.Fatalf("in-memory = %+v, want [{2 x1}]", got)
	}
	stored, _ := f.local.Load()
	if len(stored) != 1 || stored[0].ProductID != "2" {
		t.Fatalf("local = %+v, want remote snapshot", stored)
	}
}

func TestSignIn_UnionMerge_RemoteFirstAndWrittenBack(t *testing.T) {
	f := newFixture(t, persist.UnionMerge)
	_ = f.local.Save(cartdom.Snapshot{line("1", 2), line("2", 5)})
	_ = f.remote.Upsert(context.Background(), "u1", cartdom.Snapshot{line("2", 1)})

	f.store.Load(context.Background(), sessiondom.SignedOut())
	f.store.OnSessionChange(sessiondom.SignedOut(), signedIn("u1"))

	got := f.store.Lines()
	if len(got) != 2 || got[0].ProductID != "2" || got[0].Quantity != 1 || got[1].ProductID != "1" {
		t.Fatalf("merged = %+v", got)
	}
	remote, _ := f.remote.Get(context.Background(), "u1")
	if !cartdom.Equal(remote, got) {
		t.Fatalf("remote = %+v, want %+v", remote, got)
	}
}

func TestLogout_KeepsLinesAndFlushesPendingWrite(t *testing.T) {
	f := newFixture(t, persist.PreferRemote)
	f.store.Load(context.Background(), signedIn("u1"))

	if err := f.store.Add(line("7", 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	f.store.OnSessionChange(signedIn("u1"), sessiondom.SignedOut())

	if !f.store.Contains("7") || f.store.TotalItems() != 1 {
		t.Fatalf("cart should survive logout: %+v", f.store.Lines())
	}
	remote, _ := f.remote.Get(context.Background(), "u1")
	if len(remote) != 1 || remote[0].ProductID != "7" {
		t.Fatalf("pending write should land on the previous account, remote = %+v", remote)
	}

	// guest edits after logout stay local
	writes := f.remote.Writes()
	_ = f.store.Add(line("8", 1))
	flush(t, f.store)
	if f.remote.Writes() != writes {
		t.Fatalf("signed-out mutation reached remote")
	}
}

func TestMutations_DebouncedIntoOneRemoteWrite(t *testing.T) {
	f := newFixture(t, persist.PreferRemote)
	f.store.Load(context.Background(), signedIn("u1"))
	base := f.remote.Writes()

	_ = f.store.Add(line("1", 1))
	_ = f.store.Add(line("1", 1))
	f.store.SetQuantity("1", 4)
	_ = f.store.Add(line("2", 1))
	flush(t, f.store)

	if n := f.remote.Writes() - base; n != 1 {
		t.Fatalf("remote writes = %d, want 1", n)
	}
	remote, _ := f.remote.Get(context.Background(), "u1")
	if cartdom.Subtotal(remote) != 50 {
		t.Fatalf("remote subtotal = %v, want 50", cartdom.Subtotal(remote))
	}
}

func TestRemoteFailure_LocalStaysAuthoritative(t *testing.T) {
	f := newFixture(t, persist.PreferRemote)
	_ = f.local.Save(cartdom.Snapshot{line("1", 1)})
	f.remote.FailWith(errors.New("unavailable"))

	f.store.Load(context.Background(), signedIn("u1"))
	if f.store.Status() != StatusReady {
		t.Fatalf("status = %s, want ready", f.store.Status())
	}
	if err := f.store.Add(line("2", 3)); err != nil {
		t.Fatalf("add: %v", err)
	}
	flush(t, f.store)

	stored, _ := f.local.Load()
	if len(stored) != 2 || f.store.TotalItems() != 4 {
		t.Fatalf("local = %+v total=%d", stored, f.store.TotalItems())
	}
}

func TestSignIn_FailedRemoteRead_NextWriteMerges(t *testing.T) {
	f := newFixture(t, persist.PreferRemote)
	_ = f.remote.Upsert(context.Background(), "u1", cartdom.Snapshot{line("2", 1)})
	_ = f.local.Save(cartdom.Snapshot{line("1", 2)})

	f.store.Load(context.Background(), sessiondom.SignedOut())
	f.remote.FailWith(errors.New("unavailable"))
	f.store.OnSessionChange(sessiondom.SignedOut(), signedIn("u1"))
	f.remote.FailWith(nil)

	if err := f.store.Add(line("3", 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	flush(t, f.store)

	remote, _ := f.remote.Get(context.Background(), "u1")
	got := map[string]int{}
	for _, l := range remote {
		got[l.ProductID] = l.Quantity
	}
	if len(got) != 3 || got["1"] != 2 || got["2"] != 1 || got["3"] != 1 {
		t.Fatalf("remote = %+v, want lines 1, 2 and 3", remote)
	}
	if !f.store.Contains("2") || f.store.TotalItems() != 4 {
		t.Fatalf("in-memory = %+v", f.store.Lines())
	}
	stored, _ := f.local.Load()
	if len(stored) != 3 {
		t.Fatalf("local = %+v", stored)
	}

	// merged once; later writes are plain upserts of the container
	f.store.Remove("2")
	flush(t, f.store)
	remote, _ = f.remote.Get(context.Background(), "u1")
	if len(remote) != 2 {
		t.Fatalf("remote after remove = %+v", remote)
	}
}

func TestSignIn_FailedRemoteRead_RetriesUntilReadable(t *testing.T) {
	f := newFixture(t, persist.PreferRemote)
	_ = f.remote.Upsert(context.Background(), "u1", cartdom.Snapshot{line("2", 1)})
	f.remote.FailWith(errors.New("unavailable"))

	f.store.Load(context.Background(), signedIn("u1"))
	if err := f.store.Add(line("1", 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	flush(t, f.store)

	f.remote.FailWith(nil)
	if err := f.store.Add(line("1", 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	flush(t, f.store)

	remote, _ := f.remote.Get(context.Background(), "u1")
	if len(remote) != 2 {
		t.Fatalf("remote = %+v, want server line kept next to the local one", remote)
	}
}

func TestClear_DeletesRemoteSnapshot(t *testing.T) {
	f := newFixture(t, persist.PreferRemote)
	_ = f.remote.Upsert(context.Background(), "u1", cartdom.Snapshot{line("1", 1)})
	f.store.Load(context.Background(), signedIn("u1"))

	f.store.Clear()
	flush(t, f.store)

	if !f.store.IsEmpty() {
		t.Fatalf("cart not empty after clear")
	}
	remote, err := f.remote.Get(context.Background(), "u1")
	if err != nil || remote != nil {
		t.Fatalf("remote = %+v err=%v, want absent", remote, err)
	}
}

func TestLoad_StatusTransitions(t *testing.T) {
	f := newFixture(t, persist.PreferRemote)
	if f.store.Status() != StatusUninitialized {
		t.Fatalf("initial status = %s", f.store.Status())
	}

	var (
		mu   sync.Mutex
		seen []Status
	)
	unsub := f.store.Subscribe(func(st State) {
		mu.Lock()
		seen = append(seen, st.Status)
		mu.Unlock()
	})
	defer unsub()

	f.store.Load(context.Background(), sessiondom.SignedOut())

	mu.Lock()
	defer mu.Unlock()
	if len(seen) < 2 || seen[0] != StatusLoading || seen[len(seen)-1] != StatusReady {
		t.Fatalf("statuses = %v", seen)
	}
}

func TestSetQuantityZero_RemovesLine(t *testing.T) {
	f := newFixture(t, persist.PreferRemote)
	f.store.Load(context.Background(), sessiondom.SignedOut())
	_ = f.store.Add(line("1", 2))
	_ = f.store.Add(line("2", 1))

	if !f.store.SetQuantity("1", 0) {
		t.Fatalf("set quantity reported no change")
	}
	if f.store.Contains("1") || f.store.TotalItems() != 1 || f.store.Subtotal() != 10 {
		t.Fatalf("state = %+v", f.store.State())
	}
	if f.store.Remove("missing") {
		t.Fatalf("removing an absent line should report false")
	}
}
