// internal/application/usecase/wishlist/store.go
package wishlist

import (
	"context"
	"log"
	"sync"
	"time"

	"cosmetica/internal/application/persist"
	sessiondom "cosmetica/internal/domain/session"
	wldom "cosmetica/internal/domain/wishlist"
)

type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusLoading       Status = "loading"
	StatusReady         Status = "ready"
)

// Options configures a Store. Zero values fall back to defaults.
type Options struct {
	Context  context.Context
	Policy   persist.ReconcilePolicy
	Debounce time.Duration
	Timeout  time.Duration
	Observer persist.SyncObserver
}

// State is the read model handed to views and subscribers.
type State struct {
	Status  Status         `json:"status"`
	Entries wldom.Snapshot `json:"entries"`
	Count   int            `json:"count"`
	Syncing bool           `json:"syncing"`
}

type remoteSnapshot struct {
	uid     string
	entries wldom.Snapshot
}

// Store is the wishlist state container of one device. Same lifecycle and
// sync rules as the cart container, with set semantics.
type Store struct {
	local   wldom.LocalRepository
	remote  wldom.Repository
	policy  persist.ReconcilePolicy
	obs     persist.SyncObserver
	timeout time.Duration
	ctx     context.Context
	writer  *persist.Writer[remoteSnapshot]

	// last snapshot known to be on the server for lastUID
	lastMu     sync.Mutex
	lastUID    string
	lastRemote wldom.Snapshot

	mu     sync.RWMutex
	status Status
	set    *wldom.Set
	uid    string

	// account whose remote list was never read; its next write merges first
	mergeUID string

	subsMu sync.Mutex
	subs   map[int]func(State)
	nextID int
}

func NewStore(local wldom.LocalRepository, remote wldom.Repository, opts Options) *Store {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Observer == nil {
		opts.Observer = persist.NopSyncObserver{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = persist.DefaultTimeout
	}
	if opts.Policy == "" {
		opts.Policy = persist.PreferRemote
	}
	s := &Store{
		local:   local,
		remote:  remote,
		policy:  opts.Policy,
		obs:     opts.Observer,
		timeout: opts.Timeout,
		ctx:     opts.Context,
		status:  StatusUninitialized,
		set:     wldom.New(nil),
		subs:    map[int]func(State){},
	}
	s.writer = persist.NewWriter[remoteSnapshot](opts.Context, "wishlist", s.writeRemote, persist.Options{
		Delay:    opts.Debounce,
		Timeout:  opts.Timeout,
		Observer: opts.Observer,
	})
	return s
}

// Load establishes the initial snapshot for the given session.
func (s *Store) Load(ctx context.Context, sess sessiondom.Session) {
	s.mu.Lock()
	s.status = StatusLoading
	s.mu.Unlock()
	s.notify()

	uid := sess.UID()
	if uid == "" {
		s.adopt("", s.loadLocal())
		return
	}
	s.reconcile(ctx, uid, s.loadLocal())
}

// OnSessionChange reacts to auth transitions. Wire it with auth.Store.Subscribe.
func (s *Store) OnSessionChange(prev, next sessiondom.Session) {
	prevUID, nextUID := prev.UID(), next.UID()
	if prevUID == nextUID {
		return
	}

	flushCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	if err := s.writer.Flush(flushCtx); err != nil {
		log.Printf("[wishlist.store] flush on session change failed err=%v", err)
	}
	cancel()

	s.mu.Lock()
	status := s.status
	s.uid = nextUID
	local := s.set.Snapshot()
	s.mu.Unlock()

	if nextUID == "" || status == StatusUninitialized {
		s.notify()
		return
	}

	ctx, cancelRec := context.WithTimeout(s.ctx, s.timeout)
	defer cancelRec()
	s.reconcile(ctx, nextUID, local)
}

func (s *Store) reconcile(ctx context.Context, uid string, local wldom.Snapshot) {
	remote, present, err := s.remote.Get(ctx, uid)
	if err != nil {
		log.Printf("[wishlist.store] reconcile remote read failed uid=%s err=%v (using local)", uid, err)
		s.obs.Reconciled("wishlist", persist.OutcomeRemoteError)
		s.adopt(uid, local)
		s.mu.Lock()
		s.mergeUID = uid
		s.mu.Unlock()
		return
	}
	s.mu.Lock()
	if s.mergeUID == uid {
		s.mergeUID = ""
	}
	s.mu.Unlock()

	var (
		next    wldom.Snapshot
		push    bool
		outcome string
	)
	switch {
	case !present || len(remote) == 0:
		next = local
		push = len(local) > 0
		outcome = persist.OutcomeAdoptedLocal
	case s.policy == persist.UnionMerge:
		next = wldom.Union(remote, local)
		push = !wldom.Equal(next, remote)
		outcome = persist.OutcomeMerged
	default:
		next = remote
		outcome = persist.OutcomeAdoptedRemote
	}

	next = s.adopt(uid, next)
	s.setLastRemote(uid, remote)
	s.obs.Reconciled("wishlist", outcome)
	log.Printf("[wishlist.store] reconciled uid=%s outcome=%s entries=%d push=%t", uid, outcome, len(next), push)

	if push {
		start := time.Now()
		wctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.remote.Replace(wctx, uid, next)
		cancel()
		s.obs.RemoteWrite("wishlist", time.Since(start), err)
		if err != nil {
			log.Printf("[wishlist.store] first sync write failed uid=%s err=%v", uid, err)
			return
		}
		s.setLastRemote(uid, next)
	}
}

// Refresh re-reads the server list into the container (account page).
// Local storage is overwritten with what the server holds.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.RLock()
	uid := s.uid
	s.mu.RUnlock()
	if uid == "" {
		return sessiondom.ErrNotSignedIn
	}

	if err := s.writer.Flush(ctx); err != nil {
		return err
	}
	remote, _, err := s.remote.Get(ctx, uid)
	if err != nil {
		return err
	}

	s.mu.RLock()
	unmerged, local := s.mergeUID == uid, s.set.Snapshot()
	s.mu.RUnlock()
	if unmerged {
		// local entries were never pushed; keep them and let the write merge
		next := s.adopt(uid, wldom.Union(remote, local))
		s.writer.Schedule(remoteSnapshot{uid: uid, entries: next})
		return nil
	}
	s.adopt(uid, remote)
	s.setLastRemote(uid, remote)
	return nil
}

func (s *Store) adopt(uid string, entries wldom.Snapshot) wldom.Snapshot {
	set := wldom.New(entries)
	snap := set.Snapshot()

	s.mu.Lock()
	s.set = set
	s.uid = uid
	s.status = StatusReady
	s.mu.Unlock()

	if err := s.local.Save(snap); err != nil {
		log.Printf("[wishlist.store] local save failed err=%v", err)
	}
	s.notify()
	return snap
}

// Add inserts e; adding a present product is a no-op (returns false).
func (s *Store) Add(e wldom.Entry) (bool, error) {
	s.mu.Lock()
	added, err := s.set.Add(e)
	if err != nil || !added {
		s.mu.Unlock()
		return false, err
	}
	snap, uid := s.set.Snapshot(), s.uid
	s.mu.Unlock()

	s.persist(snap, uid)
	return true, nil
}

// Remove deletes the entry for productID. Returns false when absent.
func (s *Store) Remove(productID string) bool {
	s.mu.Lock()
	removed := s.set.Remove(productID)
	snap, uid := s.set.Snapshot(), s.uid
	s.mu.Unlock()

	if removed {
		s.persist(snap, uid)
	}
	return removed
}

// Toggle adds e when absent and removes it when present.
// Returns the resulting membership.
func (s *Store) Toggle(e wldom.Entry) (bool, error) {
	s.mu.Lock()
	var (
		member bool
		err    error
	)
	if s.set.Has(e.ProductID) {
		s.set.Remove(e.ProductID)
	} else {
		member, err = s.set.Add(e)
	}
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	snap, uid := s.set.Snapshot(), s.uid
	s.mu.Unlock()

	s.persist(snap, uid)
	return member, nil
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.set.Clear()
	uid := s.uid
	s.mu.Unlock()

	s.persist(wldom.Snapshot{}, uid)
}

func (s *Store) IsMember(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Has(productID)
}

func (s *Store) Entries() wldom.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Snapshot()
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Len()
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Store) State() State {
	s.mu.RLock()
	st := State{
		Status:  s.status,
		Entries: s.set.Snapshot(),
		Count:   s.set.Len(),
	}
	s.mu.RUnlock()
	st.Syncing = s.writer.Pending()
	return st
}

func (s *Store) Subscribe(fn func(State)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) Flush(ctx context.Context) error { return s.writer.Flush(ctx) }

func (s *Store) Close() { s.writer.Close() }

func (s *Store) persist(snap wldom.Snapshot, uid string) {
	if err := s.local.Save(snap); err != nil {
		log.Printf("[wishlist.store] local save failed err=%v", err)
	}
	if uid != "" {
		s.writer.Schedule(remoteSnapshot{uid: uid, entries: snap})
	}
	s.notify()
}

// writeRemote sends a single DeleteEntry when exactly one entry disappeared
// since the last successful write, and a full Replace otherwise.
func (s *Store) writeRemote(ctx context.Context, v remoteSnapshot) error {
	s.mu.RLock()
	unmerged := s.mergeUID == v.uid
	s.mu.RUnlock()
	if unmerged {
		return s.mergeRemote(ctx, v)
	}

	s.lastMu.Lock()
	prev, known := s.lastRemote, s.lastUID == v.uid
	s.lastMu.Unlock()

	var err error
	if id, ok := wldom.SingleRemoval(prev, v.entries); known && ok {
		err = s.remote.DeleteEntry(ctx, v.uid, id)
	} else {
		err = s.remote.Replace(ctx, v.uid, v.entries)
	}
	if err != nil {
		// unknown server state; force a full Replace next time
		s.setLastRemote("", nil)
		return err
	}
	s.setLastRemote(v.uid, v.entries)
	return nil
}

// mergeRemote finishes a reconcile whose remote read failed. The server list
// is unioned with the queued entries before the Replace, so nothing stored
// remotely is dropped. A read error leaves the account unmerged for a retry.
func (s *Store) mergeRemote(ctx context.Context, v remoteSnapshot) error {
	remote, _, err := s.remote.Get(ctx, v.uid)
	if err != nil {
		return err
	}
	merged := wldom.Union(remote, v.entries)
	if err := s.remote.Replace(ctx, v.uid, merged); err != nil {
		return err
	}
	s.setLastRemote(v.uid, merged)

	s.mu.Lock()
	if s.mergeUID != v.uid {
		s.mu.Unlock()
		return nil
	}
	s.mergeUID = ""
	current := s.uid == v.uid
	var snap wldom.Snapshot
	if current {
		s.set = wldom.New(wldom.Union(remote, s.set.Snapshot()))
		snap = s.set.Snapshot()
	}
	s.mu.Unlock()

	s.obs.Reconciled("wishlist", persist.OutcomeMerged)
	log.Printf("[wishlist.store] deferred merge uid=%s remote=%d entries=%d", v.uid, len(remote), len(merged))
	if current {
		if err := s.local.Save(snap); err != nil {
			log.Printf("[wishlist.store] local save failed err=%v", err)
		}
		s.notify()
	}
	return nil
}

func (s *Store) setLastRemote(uid string, snap wldom.Snapshot) {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	s.lastUID = uid
	s.lastRemote = append(wldom.Snapshot(nil), snap...)
}

func (s *Store) loadLocal() wldom.Snapshot {
	entries, err := s.local.Load()
	if err != nil {
		log.Printf("[wishlist.store] local load failed err=%v (starting empty)", err)
		return nil
	}
	return entries
}

func (s *Store) notify() {
	s.subsMu.Lock()
	if len(s.subs) == 0 {
		s.subsMu.Unlock()
		return
	}
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	st := s.State()
	for _, fn := range fns {
		fn(st)
	}
}
