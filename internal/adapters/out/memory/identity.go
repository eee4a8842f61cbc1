package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	sessiondom "cosmetica/internal/domain/session"
)

type account struct {
	id       sessiondom.Identity
	password string
}

// Identities is an in-process session.Provider. Tokens are opaque UUIDs that
// stay valid until Revoke or DeleteUser.
type Identities struct {
	mu         sync.Mutex
	byEmail    map[string]*account
	tokens     map[string]string // token -> uid
	failCreate error
}

var _ sessiondom.Provider = (*Identities)(nil)

func NewIdentities() *Identities {
	return &Identities{
		byEmail: map[string]*account{},
		tokens:  map[string]string{},
	}
}

// FailCreateWith makes CreateUser return err (nil clears it).
func (m *Identities) FailCreateWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCreate = err
}

func (m *Identities) VerifyPassword(_ context.Context, email, password string) (sessiondom.Identity, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byEmail[normEmail(email)]
	if !ok || a.password != password {
		return sessiondom.Identity{}, "", sessiondom.ErrInvalidCredentials
	}
	tok := uuid.NewString()
	m.tokens[tok] = a.id.UID
	return a.id, tok, nil
}

func (m *Identities) CreateUser(_ context.Context, email, password string) (sessiondom.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return sessiondom.Identity{}, m.failCreate
	}
	key := normEmail(email)
	if _, ok := m.byEmail[key]; ok {
		return sessiondom.Identity{}, sessiondom.ErrAlreadyRegistered
	}
	id := sessiondom.Identity{UID: uuid.NewString(), Email: strings.TrimSpace(email)}
	m.byEmail[key] = &account{id: id, password: password}
	return id, nil
}

func (m *Identities) DeleteUser(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, a := range m.byEmail {
		if a.id.UID == uid {
			delete(m.byEmail, k)
		}
	}
	for tok, u := range m.tokens {
		if u == uid {
			delete(m.tokens, tok)
		}
	}
	return nil
}

func (m *Identities) VerifyToken(_ context.Context, token string) (sessiondom.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, ok := m.tokens[token]
	if !ok {
		return sessiondom.Identity{}, sessiondom.ErrNotSignedIn
	}
	for _, a := range m.byEmail {
		if a.id.UID == uid {
			return a.id, nil
		}
	}
	return sessiondom.Identity{}, sessiondom.ErrNotSignedIn
}

// Revoke invalidates every token of uid (sign-out from elsewhere).
func (m *Identities) Revoke(uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for tok, u := range m.tokens {
		if u == uid {
			delete(m.tokens, tok)
		}
	}
}

// Exists reports whether an identity with email is registered.
func (m *Identities) Exists(email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byEmail[normEmail(email)]
	return ok
}

func normEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
