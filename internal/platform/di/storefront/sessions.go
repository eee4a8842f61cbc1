// internal/platform/di/storefront/sessions.go
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	sfhandler "cosmetica/internal/adapters/in/http/storefront/handler"
	fbout "cosmetica/internal/adapters/out/firebase"
	localout "cosmetica/internal/adapters/out/local"
	"cosmetica/internal/application/persist"
	"cosmetica/internal/application/usecase/account"
	"cosmetica/internal/application/usecase/auth"
	"cosmetica/internal/application/usecase/cart"
	"cosmetica/internal/application/usecase/checkout"
	"cosmetica/internal/application/usecase/wishlist"
	cartdom "cosmetica/internal/domain/cart"
	customerdom "cosmetica/internal/domain/customer"
	orderdom "cosmetica/internal/domain/order"
	sessiondom "cosmetica/internal/domain/session"
	wldom "cosmetica/internal/domain/wishlist"
	"cosmetica/internal/infra/localstore"
)

var ErrClosed = errors.New("storefront: sessions closed")

// Mailer covers both mails a device session can trigger.
type Mailer interface {
	auth.VerificationSender
	checkout.Mailer
}

// Ports are the process-wide collaborators every device session shares.
type Ports struct {
	Identity  sessiondom.Provider
	Profiles  customerdom.Repository
	Carts     cartdom.Repository
	Wishlists wldom.Repository
	Orders    orderdom.Repository
	Mailer    Mailer // optional
}

// SessionOptions tune the per-device containers.
type SessionOptions struct {
	Policy        persist.ReconcilePolicy
	Debounce      time.Duration
	WriteTimeout  time.Duration
	CheckoutDelay time.Duration
	IdleTTL       time.Duration
	Observer      persist.SyncObserver
	// OnCountChange receives the number of live sessions (active-session gauge).
	OnCountChange func(n int)
}

// Session is everything one device (one "browser") owns.
type Session struct {
	DeviceID string
	Auth     *auth.Store
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Checkout *checkout.Service
	Account  *account.Service

	unsub    func()
	lastSeen atomic.Int64
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// flush pushes pending cart and wishlist writes.
func (s *Session) flush(ctx context.Context) {
	if err := s.Cart.Flush(ctx); err != nil {
		log.Printf("[storefront.sessions] cart flush failed device=%s err=%v", s.DeviceID, err)
	}
	if err := s.Wishlist.Flush(ctx); err != nil {
		log.Printf("[storefront.sessions] wishlist flush failed device=%s err=%v", s.DeviceID, err)
	}
}

func (s *Session) close() {
	if s.unsub != nil {
		s.unsub()
	}
	s.Cart.Close()
	s.Wishlist.Close()
	s.Auth.Close()
}

type entry struct {
	ready chan struct{}
	sess  *Session
	holds int // requests using sess; guarded by Sessions.mu
}

// Sessions lazily builds one Session per device id and evicts idle ones.
// Evicting is lossless: state lives in local storage (and remote when signed
// in), so the next request rebuilds the same session.
type Sessions struct {
	ctx    context.Context
	cancel context.CancelFunc
	ports  Ports
	local  *localstore.Store
	opts   SessionOptions
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool

	sweepDone chan struct{}
}

func NewSessions(ports Ports, local *localstore.Store, opts SessionOptions) *Sessions {
	if opts.Observer == nil {
		opts.Observer = persist.NopSyncObserver{}
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = persist.DefaultTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Sessions{
		ctx:       ctx,
		cancel:    cancel,
		ports:     ports,
		local:     local,
		opts:      opts,
		now:       time.Now,
		entries:   map[string]*entry{},
		sweepDone: make(chan struct{}),
	}
	if opts.IdleTTL > 0 {
		go s.sweepLoop(opts.IdleTTL)
	} else {
		close(s.sweepDone)
	}
	return s
}

// Get returns the device's session, building (and loading) it on first use.
// Concurrent first requests of one device share a single build.
func (s *Sessions) Get(ctx context.Context, deviceID string) (*Session, error) {
	sess, _, err := s.get(ctx, deviceID, false)
	return sess, err
}

// get optionally takes a hold on the entry; a held session is never swept.
// The returned release must be called exactly once when hold is set.
func (s *Sessions) get(ctx context.Context, deviceID string, hold bool) (*Session, func(), error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, nil, errors.New("storefront: empty device id")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, nil, ErrClosed
	}
	e, ok := s.entries[deviceID]
	if !ok {
		e = &entry{ready: make(chan struct{})}
		s.entries[deviceID] = e
	}
	if hold {
		e.holds++
	}
	n := len(s.entries)
	s.mu.Unlock()

	release := func() {}
	if hold {
		var once sync.Once
		release = func() {
			once.Do(func() {
				s.mu.Lock()
				e.holds--
				s.mu.Unlock()
			})
		}
	}

	if !ok {
		e.sess = s.build(deviceID)
		close(e.ready)
		s.countChanged(n)
	}

	select {
	case <-e.ready:
	case <-ctx.Done():
		release()
		return nil, nil, ctx.Err()
	}
	e.sess.touch(s.now())
	return e.sess, release, nil
}

// Resolve adapts Get to the view layer. The session is held until ctx ends
// (the request returns), so the sweeper cannot close it mid-request.
func (s *Sessions) Resolve(ctx context.Context, deviceID string) (*sfhandler.Device, error) {
	sess, release, err := s.get(ctx, deviceID, true)
	if err != nil {
		if errors.Is(err, ErrClosed) {
			return nil, fmt.Errorf("%w: %v", sfhandler.ErrUnavailable, err)
		}
		return nil, err
	}
	context.AfterFunc(ctx, release)
	return &sfhandler.Device{
		ID:       sess.DeviceID,
		Auth:     sess.Auth,
		Cart:     sess.Cart,
		Wishlist: sess.Wishlist,
		Checkout: sess.Checkout,
		Account:  sess.Account,
	}, nil
}

// Len is the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// build runs on the registry's context: a cancelled first request must not
// leave a half-restored session cached.
func (s *Sessions) build(deviceID string) *Session {
	ns := s.local.Device(deviceID)
	gw := fbout.NewClient(s.ports.Identity, localout.NewTokenStore(ns))

	authOpts := []auth.Option{}
	checkoutOpts := []checkout.Option{checkout.WithDelay(s.opts.CheckoutDelay)}
	if s.ports.Mailer != nil {
		authOpts = append(authOpts, auth.WithVerificationSender(s.ports.Mailer))
		checkoutOpts = append(checkoutOpts, checkout.WithMailer(s.ports.Mailer))
	}
	authStore := auth.NewStore(gw, s.ports.Profiles, authOpts...)

	cartStore := cart.NewStore(localout.NewCartStore(ns), s.ports.Carts, cart.Options{
		Context:  s.ctx,
		Policy:   s.opts.Policy,
		Debounce: s.opts.Debounce,
		Timeout:  s.opts.WriteTimeout,
		Observer: s.opts.Observer,
	})
	wlStore := wishlist.NewStore(localout.NewWishlistStore(ns), s.ports.Wishlists, wishlist.Options{
		Context:  s.ctx,
		Policy:   s.opts.Policy,
		Debounce: s.opts.Debounce,
		Timeout:  s.opts.WriteTimeout,
		Observer: s.opts.Observer,
	})

	sess := &Session{
		DeviceID: deviceID,
		Auth:     authStore,
		Cart:     cartStore,
		Wishlist: wlStore,
		Checkout: checkout.NewService(authStore, cartStore, checkoutOpts...),
		Account:  account.NewService(authStore, s.ports.Orders),
	}

	// restore auth first so the containers load for the right account
	loadCtx, cancel := context.WithTimeout(s.ctx, s.opts.WriteTimeout)
	defer cancel()
	if err := authStore.Restore(loadCtx); err != nil {
		log.Printf("[storefront.sessions] restore failed device=%s err=%v (signed out)", deviceID, err)
	}
	cur := authStore.Session()
	cartStore.Load(loadCtx, cur)
	wlStore.Load(loadCtx, cur)

	sess.unsub = authStore.Subscribe(func(prev, next sessiondom.Session) {
		cartStore.OnSessionChange(prev, next)
		wlStore.OnSessionChange(prev, next)
	})

	log.Printf("[storefront.sessions] session ready device=%s signedIn=%t", deviceID, cur.IsSignedIn())
	return sess
}

func (s *Sessions) sweepLoop(ttl time.Duration) {
	defer close(s.sweepDone)
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			s.Sweep(ttl)
		}
	}
}

// Sweep flushes and evicts sessions idle for longer than ttl.
// It returns the number of evicted sessions.
func (s *Sessions) Sweep(ttl time.Duration) int {
	now := s.now()

	s.mu.Lock()
	var idle []*Session
	for id, e := range s.entries {
		select {
		case <-e.ready:
		default:
			continue // still building
		}
		if e.holds > 0 {
			continue
		}
		if e.sess.idleSince(now) > ttl {
			idle = append(idle, e.sess)
			delete(s.entries, id)
		}
	}
	n := len(s.entries)
	s.mu.Unlock()

	for _, sess := range idle {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.WriteTimeout)
		sess.flush(ctx)
		cancel()
		sess.close()
	}
	if len(idle) > 0 {
		log.Printf("[storefront.sessions] evicted idle sessions n=%d live=%d", len(idle), n)
		s.countChanged(n)
	}
	return len(idle)
}

// Close flushes every session's pending writes and stops all background work.
func (s *Sessions) Close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	all := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, e)
	}
	s.entries = map[string]*entry{}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, e := range all {
		wg.Add(1)
		go func(e *entry) {
			defer wg.Done()
			select {
			case <-e.ready:
			case <-ctx.Done():
				return
			}
			e.sess.flush(ctx)
			e.sess.close()
		}(e)
	}
	wg.Wait()

	s.cancel()
	<-s.sweepDone
	s.countChanged(0)
	log.Printf("[storefront.sessions] closed n=%d", len(all))
}

func (s *Sessions) countChanged(n int) {
	if s.opts.OnCountChange != nil {
		s.opts.OnCountChange(n)
	}
}
