package session

import "context"

// Provider is the process-wide identity service behind every device Gateway.
type Provider interface {
	// VerifyPassword signs in with email/password and returns the identity plus
	// an ID token that can be verified later (session restoration).
	VerifyPassword(ctx context.Context, email, password string) (Identity, string, error)

	// CreateUser returns ErrAlreadyRegistered when the email is taken.
	CreateUser(ctx context.Context, email, password string) (Identity, error)

	DeleteUser(ctx context.Context, uid string) error

	// VerifyToken returns ErrNotSignedIn for expired or revoked tokens.
	VerifyToken(ctx context.Context, token string) (Identity, error)
}

// TokenStore keeps one device's ID token (the browser's persisted session).
type TokenStore interface {
	// LoadToken returns "" when nothing is stored.
	LoadToken() (string, error)
	SaveToken(token string) error
	DeleteToken() error
}
