// internal/domain/session/session.go
package session

import (
	"context"
	"errors"
	"strings"

	customerdom "cosmetica/internal/domain/customer"
)

var (
	ErrInvalidCredentials = errors.New("session: invalid credentials")
	ErrAlreadyRegistered  = errors.New("session: already registered")
	ErrNotSignedIn        = errors.New("session: not signed in")
)

// Identity is the authenticated principal from the auth provider.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Session is either signed out (Identity == nil) or signed in with a profile.
type Session struct {
	Identity *Identity
	Profile  *customerdom.Profile
}

// SignedOut is the zero session.
func SignedOut() Session { return Session{} }

// SignedIn builds a signed-in session. Both values are copied.
func SignedIn(id Identity, p customerdom.Profile) Session {
	return Session{Identity: &id, Profile: &p}
}

func (s Session) IsSignedIn() bool {
	return s.Identity != nil && strings.TrimSpace(s.Identity.UID) != ""
}

// UID returns the signed-in uid or "".
func (s Session) UID() string {
	if !s.IsSignedIn() {
		return ""
	}
	return s.Identity.UID
}

// EventType mirrors the auth provider's state change notifications.
type EventType string

const (
	EventSignedIn  EventType = "SIGNED_IN"
	EventSignedOut EventType = "SIGNED_OUT"
)

// AuthEvent is delivered to OnAuthStateChange listeners.
type AuthEvent struct {
	Type     EventType
	Identity *Identity // set for SIGNED_IN
}

// Gateway is the auth collaborator seen by the auth container.
// One Gateway instance belongs to one device (like one browser's auth client).
type Gateway interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignUp(ctx context.Context, email, password string) (Identity, error)
	SignOut(ctx context.Context) error
	CurrentIdentity(ctx context.Context) (*Identity, error)

	// DeleteIdentity removes an identity created by SignUp (rollback when the
	// matching profile row cannot be created).
	DeleteIdentity(ctx context.Context, uid string) error

	// OnAuthStateChange registers fn; the returned func unsubscribes.
	OnAuthStateChange(fn func(AuthEvent)) (unsubscribe func())
}
