// internal/application/usecase/auth/store.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"cosmetica/internal/application/validation"
	customerdom "cosmetica/internal/domain/customer"
	sessiondom "cosmetica/internal/domain/session"
)

var (
	// ErrAlreadyRegistered is the distinct tag the register form checks for.
	ErrAlreadyRegistered  = sessiondom.ErrAlreadyRegistered
	ErrInvalidCredentials = sessiondom.ErrInvalidCredentials
	ErrNotSignedIn        = sessiondom.ErrNotSignedIn
	ErrProvisioning       = errors.New("auth: profile provisioning failed")
)

// Result is what container operations return instead of raising.
// Message is safe to show inline in a form.
type Result struct {
	Success bool   `json:"success"`
	Err     error  `json:"-"`
	Message string `json:"message,omitempty"`
}

func ok() Result { return Result{Success: true} }

func fail(err error, msg string) Result {
	if msg == "" && err != nil {
		msg = err.Error()
	}
	return Result{Success: false, Err: err, Message: msg}
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string `json:"firstName" validate:"max=100"`
	LastName        string `json:"lastName" validate:"max=100"`
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerificationSender sends the email-confirmation message after registration.
type VerificationSender interface {
	SendVerification(ctx context.Context, email, name string) error
}

// Listener receives session transitions (prev -> next).
type Listener func(prev, next sessiondom.Session)

// Store is the auth state container of one device.
//
// NOTE:
//   - all remote calls happen without holding mu
//   - gateway events caused by the store's own Login/Logout are ignored
//     (the direct call path derives the session itself)
type Store struct {
	gateway  sessiondom.Gateway
	profiles customerdom.Repository
	verifier VerificationSender
	now      func() time.Time

	mu      sync.RWMutex
	sess    sessiondom.Session
	loading bool
	ownOps  int

	subsMu sync.Mutex
	subs   map[int]Listener
	nextID int

	unsubscribeGateway func()
}

// Option customizes a Store.
type Option func(*Store)

// WithVerificationSender enables the confirmation mail on Register.
func WithVerificationSender(v VerificationSender) Option {
	return func(s *Store) { s.verifier = v }
}

// WithClock is useful for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates the container and subscribes it to gateway auth events.
func NewStore(gateway sessiondom.Gateway, profiles customerdom.Repository, opts ...Option) *Store {
	s := &Store{
		gateway:  gateway,
		profiles: profiles,
		now:      func() time.Time { return time.Now().UTC() },
		sess:     sessiondom.SignedOut(),
		subs:     map[int]Listener{},
	}
	for _, o := range opts {
		o(s)
	}
	if gateway != nil {
		s.unsubscribeGateway = gateway.OnAuthStateChange(s.handleAuthEvent)
	}
	return s
}

// Close detaches from the gateway.
func (s *Store) Close() {
	if s.unsubscribeGateway != nil {
		s.unsubscribeGateway()
		s.unsubscribeGateway = nil
	}
}

// Session returns the current session (copy).
func (s *Store) Session() sessiondom.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.sess)
}

// IsLoading reports whether an auth operation is running.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Subscribe registers fn for session transitions; the returned func unsubscribes.
func (s *Store) Subscribe(fn Listener) func() {
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

// Restore derives the session from the gateway's current identity
// (session restoration for a device that was signed in before).
func (s *Store) Restore(ctx context.Context) error {
	id, err := s.gateway.CurrentIdentity(ctx)
	if err != nil {
		return err
	}
	if id == nil {
		return nil
	}
	if s.Session().UID() == id.UID {
		return nil
	}
	if _, err := s.establish(ctx, *id); err != nil {
		log.Printf("[auth.store] restore provisioning failed uid=%s err=%v", id.UID, err)
		return err
	}
	return nil
}

// Login signs in, then loads or provisions the profile.
// A provisioning failure signs the gateway out again (no partial session).
func (s *Store) Login(ctx context.Context, in LoginInput) Result {
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return fail(err, "")
	}

	s.begin()
	defer s.end()

	id, err := s.gateway.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, sessiondom.ErrInvalidCredentials) {
			return fail(ErrInvalidCredentials, "Invalid email or password.")
		}
		log.Printf("[auth.store] login failed email=%s err=%v", in.Email, err)
		return fail(err, "Sign in failed: "+err.Error())
	}

	if _, err := s.establish(ctx, id); err != nil {
		log.Printf("[auth.store] login provisioning failed uid=%s err=%v", id.UID, err)
		if soErr := s.gateway.SignOut(ctx); soErr != nil {
			log.Printf("[auth.store] rollback sign-out failed uid=%s err=%v", id.UID, soErr)
		}
		s.setSession(sessiondom.SignedOut())
		return fail(fmt.Errorf("%w: %v", ErrProvisioning, err), "Sign in failed: could not load your profile.")
	}

	log.Printf("[auth.store] login ok uid=%s", id.UID)
	return ok()
}

// Register creates the identity and the matching profile row.
// It does not sign in: the user confirms the email and logs in afterwards.
func (s *Store) Register(ctx context.Context, in RegisterInput) Result {
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return fail(err, "")
	}

	s.begin()
	defer s.end()

	id, err := s.gateway.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, sessiondom.ErrAlreadyRegistered) {
			return fail(ErrAlreadyRegistered, "This email is already registered. Please sign in instead.")
		}
		log.Printf("[auth.store] register failed email=%s err=%v", in.Email, err)
		return fail(err, "Registration failed: "+err.Error())
	}

	p, err := customerdom.NewProvisioned(id.UID, id.Email, in.FirstName, in.LastName, s.now())
	if err == nil {
		err = s.profiles.Upsert(ctx, p)
	}
	if err != nil {
		log.Printf("[auth.store] register profile create failed uid=%s err=%v", id.UID, err)
		// never leave an identity without a profile
		if delErr := s.gateway.DeleteIdentity(ctx, id.UID); delErr != nil {
			log.Printf("[auth.store] register rollback failed uid=%s err=%v", id.UID, delErr)
		}
		return fail(fmt.Errorf("%w: %v", ErrProvisioning, err), "Registration failed: could not create your profile.")
	}

	if s.verifier != nil {
		if err := s.verifier.SendVerification(ctx, p.Email, p.FullName()); err != nil {
			// best-effort: the account exists, the user can request another mail
			log.Printf("[auth.store] verification mail failed uid=%s err=%v", id.UID, err)
		}
	}

	log.Printf("[auth.store] register ok uid=%s", id.UID)
	return ok()
}

// Logout clears the session. Local cart/wishlist are not touched.
func (s *Store) Logout(ctx context.Context) Result {
	s.begin()
	defer s.end()

	err := s.gateway.SignOut(ctx)
	s.setSession(sessiondom.SignedOut())
	if err != nil {
		log.Printf("[auth.store] logout gateway error (session cleared anyway) err=%v", err)
	}
	return ok()
}

// UpdateProfile writes only the patched fields remotely, then reloads the
// cached copy so server-owned fields (loyalty points) are never overwritten.
func (s *Store) UpdateProfile(ctx context.Context, patch customerdom.Patch) Result {
	return s.patchProfile(ctx, patch, "profile")
}

// UpdateAddress patches only the address fields.
func (s *Store) UpdateAddress(ctx context.Context, a customerdom.AddressFields) Result {
	return s.patchProfile(ctx, customerdom.Patch{AddressFields: a}, "address")
}

func (s *Store) patchProfile(ctx context.Context, patch customerdom.Patch, what string) Result {
	cur := s.Session()
	if !cur.IsSignedIn() || cur.Profile == nil {
		return fail(ErrNotSignedIn, "Please sign in first.")
	}
	if patch.IsEmpty() {
		return ok()
	}

	// Apply validates names; the remote row is patched, not replaced
	next, err := cur.Profile.Apply(patch, s.now())
	if err != nil {
		return fail(err, "")
	}
	uid := cur.UID()
	if err := s.profiles.Update(ctx, uid, patch); err != nil {
		log.Printf("[auth.store] update %s failed uid=%s err=%v", what, uid, err)
		return fail(err, "Could not save your "+what+": "+err.Error())
	}

	if fresh, err := s.profiles.GetByID(ctx, uid); err == nil {
		next = *fresh
	} else {
		log.Printf("[auth.store] reload after %s update failed uid=%s err=%v (keeping patched cache)", what, uid, err)
	}
	s.replaceProfile(uid, next)
	return ok()
}

// RefreshProfile re-fetches the cached profile.
func (s *Store) RefreshProfile(ctx context.Context) (*customerdom.Profile, error) {
	uid := s.Session().UID()
	if uid == "" {
		return nil, ErrNotSignedIn
	}
	p, err := s.profiles.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.replaceProfile(uid, *p)
	cp := *p
	return &cp, nil
}

// handleAuthEvent re-derives the session from gateway notifications
// (restoration, expiry, sign-out from elsewhere).
func (s *Store) handleAuthEvent(ev sessiondom.AuthEvent) {
	s.mu.RLock()
	own := s.ownOps > 0
	curUID := s.sess.UID()
	s.mu.RUnlock()
	if own {
		return
	}

	switch ev.Type {
	case sessiondom.EventSignedIn:
		if ev.Identity == nil || ev.Identity.UID == curUID {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if _, err := s.establish(ctx, *ev.Identity); err != nil {
			log.Printf("[auth.store] SIGNED_IN event provisioning failed uid=%s err=%v", ev.Identity.UID, err)
		}
	case sessiondom.EventSignedOut:
		if curUID == "" {
			return
		}
		s.setSession(sessiondom.SignedOut())
	}
}

// establish loads or provisions the profile for id and switches to SignedIn.
func (s *Store) establish(ctx context.Context, id sessiondom.Identity) (customerdom.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id.UID)
	switch {
	case err == nil && p != nil:
	case errors.Is(err, customerdom.ErrNotFound) || (err == nil && p == nil):
		// first-login provisioning
		np, perr := customerdom.NewProvisioned(id.UID, id.Email, "", "", s.now())
		if perr != nil {
			return customerdom.Profile{}, perr
		}
		if uerr := s.profiles.Upsert(ctx, np); uerr != nil {
			return customerdom.Profile{}, uerr
		}
		log.Printf("[auth.store] provisioned profile uid=%s", id.UID)
		p = &np
	default:
		return customerdom.Profile{}, err
	}

	s.setSession(sessiondom.SignedIn(id, *p))
	return *p, nil
}

func (s *Store) begin() {
	s.mu.Lock()
	s.ownOps++
	s.loading = true
	s.mu.Unlock()
}

func (s *Store) end() {
	s.mu.Lock()
	s.ownOps--
	s.loading = s.ownOps > 0
	s.mu.Unlock()
}

func (s *Store) setSession(next sessiondom.Session) {
	s.mu.Lock()
	prev := s.sess
	s.sess = copySession(next)
	s.mu.Unlock()

	if prev.UID() == next.UID() && prev.IsSignedIn() == next.IsSignedIn() {
		// profile refresh only; listeners care about identity transitions
		return
	}
	s.notify(copySession(prev), copySession(next))
}

func (s *Store) replaceProfile(uid string, p customerdom.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess.UID() != uid {
		return
	}
	cp := p
	s.sess.Profile = &cp
}

func (s *Store) notify(prev, next sessiondom.Session) {
	s.subsMu.Lock()
	fns := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(prev, next)
	}
}

func copySession(in sessiondom.Session) sessiondom.Session {
	out := sessiondom.Session{}
	if in.Identity != nil {
		id := *in.Identity
		out.Identity = &id
	}
	if in.Profile != nil {
		p := *in.Profile
		out.Profile = &p
	}
	return out
}
