// internal/adapters/out/firebase/backend.go
package firebase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	sessiondom "cosmetica/internal/domain/session"
)

// DefaultSessionTTL is the lifetime of the session cookie minted at sign-in
// (Firebase allows 5 minutes .. 14 days).
const DefaultSessionTTL = 14 * 24 * time.Hour

// Backend is the process-wide identity provider:
//   - password sign-in through the Identity Toolkit REST API (web API key)
//   - everything else through the Firebase Admin SDK
//
// Sign-in exchanges the short-lived ID token for a session cookie; that cookie
// is what devices persist and what VerifyToken checks on restoration.
type Backend struct {
	admin      *fbauth.Client
	toolkit    *identitytoolkit.Service
	sessionTTL time.Duration
}

func NewBackend(ctx context.Context, admin *fbauth.Client, webAPIKey string, sessionTTL time.Duration) (*Backend, error) {
	if admin == nil {
		return nil, errors.New("firebase.backend: admin auth client is nil")
	}
	webAPIKey = strings.TrimSpace(webAPIKey)
	if webAPIKey == "" {
		return nil, errors.New("firebase.backend: web API key is empty")
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(webAPIKey))
	if err != nil {
		return nil, fmt.Errorf("firebase.backend: identitytoolkit.NewService: %w", err)
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Backend{admin: admin, toolkit: svc, sessionTTL: sessionTTL}, nil
}

func (b *Backend) VerifyPassword(ctx context.Context, email, password string) (sessiondom.Identity, string, error) {
	resp, err := b.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		if isCredentialError(err) {
			return sessiondom.Identity{}, "", sessiondom.ErrInvalidCredentials
		}
		return sessiondom.Identity{}, "", fmt.Errorf("firebase.backend: verifyPassword: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.IdToken) == "" || strings.TrimSpace(resp.LocalId) == "" {
		return sessiondom.Identity{}, "", errors.New("firebase.backend: verifyPassword returned no token")
	}

	cookie, err := b.admin.SessionCookie(ctx, resp.IdToken, b.sessionTTL)
	if err != nil {
		return sessiondom.Identity{}, "", fmt.Errorf("firebase.backend: session cookie: %w", err)
	}

	id := sessiondom.Identity{UID: resp.LocalId, Email: resp.Email}
	if id.Email == "" {
		id.Email = email
	}
	return id, cookie, nil
}

func (b *Backend) CreateUser(ctx context.Context, email, password string) (sessiondom.Identity, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(false)

	u, err := b.admin.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return sessiondom.Identity{}, sessiondom.ErrAlreadyRegistered
		}
		return sessiondom.Identity{}, fmt.Errorf("firebase.backend: createUser: %w", err)
	}
	return sessiondom.Identity{UID: u.UID, Email: u.Email}, nil
}

func (b *Backend) DeleteUser(ctx context.Context, uid string) error {
	if err := b.admin.DeleteUser(ctx, uid); err != nil {
		if fbauth.IsUserNotFound(err) {
			return nil
		}
		return fmt.Errorf("firebase.backend: deleteUser: %w", err)
	}
	return nil
}

func (b *Backend) VerifyToken(ctx context.Context, token string) (sessiondom.Identity, error) {
	tok, err := b.admin.VerifySessionCookieAndCheckRevoked(ctx, token)
	if err != nil {
		if fbauth.IsSessionCookieExpired(err) || fbauth.IsSessionCookieRevoked(err) ||
			fbauth.IsSessionCookieInvalid(err) || fbauth.IsUserDisabled(err) {
			return sessiondom.Identity{}, sessiondom.ErrNotSignedIn
		}
		return sessiondom.Identity{}, fmt.Errorf("firebase.backend: verify session: %w", err)
	}

	email, _ := tok.Claims["email"].(string)
	return sessiondom.Identity{UID: tok.UID, Email: email}, nil
}

// EmailVerificationLink builds the confirmation link sent after registration.
func (b *Backend) EmailVerificationLink(ctx context.Context, email, continueURL string) (string, error) {
	if strings.TrimSpace(continueURL) == "" {
		return b.admin.EmailVerificationLink(ctx, email)
	}
	link, err := b.admin.EmailVerificationLinkWithSettings(ctx, email, &fbauth.ActionCodeSettings{
		URL: continueURL,
	})
	if err != nil {
		log.Printf("[firebase.backend] verification link with settings failed, retrying plain err=%v", err)
		return b.admin.EmailVerificationLink(ctx, email)
	}
	return link, nil
}

// Identity Toolkit reports credential problems as 400 with a code in Message.
func isCredentialError(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	msgs := []string{gerr.Message}
	for _, item := range gerr.Errors {
		msgs = append(msgs, item.Message, item.Reason)
	}
	for _, m := range msgs {
		switch {
		case strings.HasPrefix(m, "INVALID_PASSWORD"),
			strings.HasPrefix(m, "EMAIL_NOT_FOUND"),
			strings.HasPrefix(m, "INVALID_LOGIN_CREDENTIALS"),
			strings.HasPrefix(m, "INVALID_EMAIL"),
			strings.HasPrefix(m, "USER_DISABLED"):
			return true
		}
	}
	return false
}
