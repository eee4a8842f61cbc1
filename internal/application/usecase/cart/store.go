// internal/application/usecase/cart/store.go
package cart

import (
	"context"
	"log"
	"sync"
	"time"

	"cosmetica/internal/application/persist"
	cartdom "cosmetica/internal/domain/cart"
	sessiondom "cosmetica/internal/domain/session"
)

// Status is the container lifecycle: Uninitialized -> Loading -> Ready.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusLoading       Status = "loading"
	StatusReady         Status = "ready"
)

// Options configures a Store. Zero values fall back to defaults.
type Options struct {
	Context  context.Context // lifetime of background writes
	Policy   persist.ReconcilePolicy
	Debounce time.Duration
	Timeout  time.Duration
	Observer persist.SyncObserver
}

// State is the read model handed to views and subscribers.
type State struct {
	Status     Status           `json:"status"`
	Lines      cartdom.Snapshot `json:"lines"`
	TotalItems int              `json:"totalItems"`
	Subtotal   float64          `json:"subtotal"`
	Syncing    bool             `json:"syncing"`
}

type remoteSnapshot struct {
	uid   string
	lines cartdom.Snapshot
}

// Store is the cart state container of one device.
//
// Mutations apply to memory synchronously, then write local storage, then
// schedule a debounced remote write when signed in. Remote failures are logged
// and never block local use.
type Store struct {
	local   cartdom.LocalRepository
	remote  cartdom.Repository
	policy  persist.ReconcilePolicy
	obs     persist.SyncObserver
	timeout time.Duration
	ctx     context.Context
	writer  *persist.Writer[remoteSnapshot]

	mu     sync.RWMutex
	status Status
	cart   *cartdom.Cart
	uid    string

	// account whose remote cart was never read; its next write merges first
	mergeUID string

	subsMu sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// NewStore creates an uninitialized cart container; call Load to populate it.
func NewStore(local cartdom.LocalRepository, remote cartdom.Repository, opts Options) *Store {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Observer == nil {
		opts.Observer = persist.NopSyncObserver{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = persist.DefaultTimeout
	}
	s := &Store{
		local:   local,
		remote:  remote,
		policy:  opts.Policy,
		obs:     opts.Observer,
		timeout: opts.Timeout,
		ctx:     opts.Context,
		status:  StatusUninitialized,
		cart:    cartdom.New(nil),
		subs:    map[int]func(State){},
	}
	if s.policy == "" {
		s.policy = persist.PreferRemote
	}
	s.writer = persist.NewWriter[remoteSnapshot](opts.Context, "cart", s.writeRemote, persist.Options{
		Delay:    opts.Debounce,
		Timeout:  opts.Timeout,
		Observer: opts.Observer,
	})
	return s
}

// Load establishes the initial snapshot for the given session.
// Signed in: remote is fetched and reconciled with local. Signed out: local only.
func (s *Store) Load(ctx context.Context, sess sessiondom.Session) {
	s.mu.Lock()
	s.status = StatusLoading
	s.mu.Unlock()
	s.notify()

	uid := sess.UID()
	if uid == "" {
		lines := s.loadLocal()
		s.mu.Lock()
		s.cart = cartdom.New(lines)
		s.uid = ""
		s.status = StatusReady
		s.mu.Unlock()
		s.notify()
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

	// pending writes carry their uid, so they still land on the previous account
	flushCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	if err := s.writer.Flush(flushCtx); err != nil {
		log.Printf("[cart.store] flush on session change failed err=%v", err)
	}
	cancel()

	s.mu.Lock()
	status := s.status
	s.uid = nextUID
	local := s.cart.Snapshot()
	s.mu.Unlock()

	if nextUID == "" || status == StatusUninitialized {
		// sign-out keeps the local cart (guest continuity); Load handles the rest
		s.notify()
		return
	}

	ctx, cancelRec := context.WithTimeout(s.ctx, s.timeout)
	defer cancelRec()
	s.reconcile(ctx, nextUID, local)
}

// reconcile runs once per sign-in.
func (s *Store) reconcile(ctx context.Context, uid string, local cartdom.Snapshot) {
	remote, err := s.remote.Get(ctx, uid)
	if err != nil {
		log.Printf("[cart.store] reconcile remote read failed uid=%s err=%v (using local)", uid, err)
		s.obs.Reconciled("cart", persist.OutcomeRemoteError)
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
		next    cartdom.Snapshot
		push    bool
		outcome string
	)
	switch {
	case len(remote) == 0:
		next = local
		push = remote == nil || len(local) > 0
		outcome = persist.OutcomeAdoptedLocal
	case s.policy == persist.UnionMerge:
		next = cartdom.Union(remote, local)
		push = !cartdom.Equal(next, remote)
		outcome = persist.OutcomeMerged
	default:
		next = remote
		outcome = persist.OutcomeAdoptedRemote
	}

	next = s.adopt(uid, next)
	s.obs.Reconciled("cart", outcome)
	log.Printf("[cart.store] reconciled uid=%s outcome=%s lines=%d push=%t", uid, outcome, len(next), push)

	if push {
		start := time.Now()
		wctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.remote.Upsert(wctx, uid, next)
		cancel()
		s.obs.RemoteWrite("cart", time.Since(start), err)
		if err != nil {
			log.Printf("[cart.store] first sync write failed uid=%s err=%v", uid, err)
		}
	}
}

// adopt replaces memory + local storage with lines and marks the store ready.
func (s *Store) adopt(uid string, lines cartdom.Snapshot) cartdom.Snapshot {
	c := cartdom.New(lines)
	snap := c.Snapshot()

	s.mu.Lock()
	s.cart = c
	s.uid = uid
	s.status = StatusReady
	s.mu.Unlock()

	if err := s.local.Save(snap); err != nil {
		log.Printf("[cart.store] local save failed err=%v", err)
	}
	s.notify()
	return snap
}

// Add sums quantity into an existing line or appends a new one.
func (s *Store) Add(l cartdom.Line) error {
	s.mu.Lock()
	if err := s.cart.Add(l); err != nil {
		s.mu.Unlock()
		return err
	}
	snap, uid := s.cart.Snapshot(), s.uid
	s.mu.Unlock()

	s.persist(snap, uid)
	return nil
}

// SetQuantity sets a line's quantity; q <= 0 removes the line.
// Returns false when no line exists for productID.
func (s *Store) SetQuantity(productID string, q int) bool {
	s.mu.Lock()
	changed := s.cart.SetQuantity(productID, q)
	snap, uid := s.cart.Snapshot(), s.uid
	s.mu.Unlock()

	if changed {
		s.persist(snap, uid)
	}
	return changed
}

// Remove deletes the line for productID. Returns false when absent.
func (s *Store) Remove(productID string) bool {
	return s.SetQuantity(productID, 0)
}

// Clear empties the cart (explicit clear or successful checkout).
func (s *Store) Clear() {
	s.mu.Lock()
	s.cart.Clear()
	uid := s.uid
	s.mu.Unlock()

	s.persist(cartdom.Snapshot{}, uid)
}

// Deduct removes what a checkout submitted, keeping anything added since.
func (s *Store) Deduct(submitted cartdom.Snapshot) {
	s.mu.Lock()
	s.cart.Deduct(submitted)
	snap, uid := s.cart.Snapshot(), s.uid
	s.mu.Unlock()

	s.persist(snap, uid)
}

// State returns the current read model.
func (s *Store) State() State {
	s.mu.RLock()
	st := State{
		Status:     s.status,
		Lines:      s.cart.Snapshot(),
		TotalItems: s.cart.TotalItems(),
		Subtotal:   s.cart.Subtotal(),
	}
	s.mu.RUnlock()
	st.Syncing = s.writer.Pending()
	return st
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Store) IsLoading() bool { return s.Status() == StatusLoading }

func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.TotalItems()
}

func (s *Store) Subtotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Subtotal()
}

func (s *Store) Lines() cartdom.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Snapshot()
}

func (s *Store) Contains(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Contains(productID)
}

func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Len() == 0
}

// Subscribe registers fn for state changes; the returned func unsubscribes.
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

// Flush pushes any pending remote write now and waits for it.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

// Close stops background writes. Call Flush first to keep pending changes.
func (s *Store) Close() {
	s.writer.Close()
}

func (s *Store) persist(snap cartdom.Snapshot, uid string) {
	if err := s.local.Save(snap); err != nil {
		log.Printf("[cart.store] local save failed err=%v", err)
	}
	if uid != "" {
		s.writer.Schedule(remoteSnapshot{uid: uid, lines: snap})
	}
	s.notify()
}

func (s *Store) writeRemote(ctx context.Context, v remoteSnapshot) error {
	s.mu.RLock()
	unmerged := s.mergeUID == v.uid
	s.mu.RUnlock()
	if unmerged {
		return s.mergeRemote(ctx, v)
	}
	if len(v.lines) == 0 {
		return s.remote.Delete(ctx, v.uid)
	}
	return s.remote.Upsert(ctx, v.uid, v.lines)
}

// mergeRemote finishes a reconcile whose remote read failed: the server
// cart is read again and unioned with the queued lines, server lines winning.
// A read error keeps the account unmerged so the next write retries.
func (s *Store) mergeRemote(ctx context.Context, v remoteSnapshot) error {
	remote, err := s.remote.Get(ctx, v.uid)
	if err != nil {
		return err
	}
	merged := cartdom.Union(remote, v.lines)
	if len(merged) == 0 {
		err = s.remote.Delete(ctx, v.uid)
	} else {
		err = s.remote.Upsert(ctx, v.uid, merged)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.mergeUID != v.uid {
		s.mu.Unlock()
		return nil
	}
	s.mergeUID = ""
	current := s.uid == v.uid
	var snap cartdom.Snapshot
	if current {
		s.cart = cartdom.New(cartdom.Union(remote, s.cart.Snapshot()))
		snap = s.cart.Snapshot()
	}
	s.mu.Unlock()

	s.obs.Reconciled("cart", persist.OutcomeMerged)
	log.Printf("[cart.store] deferred merge uid=%s remote=%d lines=%d", v.uid, len(remote), len(merged))
	if current {
		if err := s.local.Save(snap); err != nil {
			log.Printf("[cart.store] local save failed err=%v", err)
		}
		s.notify()
	}
	return nil
}

func (s *Store) loadLocal() cartdom.Snapshot {
	lines, err := s.local.Load()
	if err != nil {
		log.Printf("[cart.store] local load failed err=%v (starting empty)", err)
		return nil
	}
	return lines
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
