// internal/adapters/out/firebase/client.go
package firebase

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	sessiondom "cosmetica/internal/domain/session"
)

// Client is the auth client of one device (the browser-side SDK counterpart).
// It implements session.Gateway.
//
// NOTE:
//   - listeners are called synchronously, after internal locks are released
//   - the session token lives in the device's TokenStore; Restore re-verifies it
type Client struct {
	provider sessiondom.Provider
	tokens   sessiondom.TokenStore

	mu       sync.Mutex
	current  *sessiondom.Identity
	restored bool

	lmu       sync.Mutex
	listeners map[int]func(sessiondom.AuthEvent)
	nextID    int
}

var _ sessiondom.Gateway = (*Client)(nil)

func NewClient(provider sessiondom.Provider, tokens sessiondom.TokenStore) *Client {
	return &Client{
		provider:  provider,
		tokens:    tokens,
		listeners: map[int]func(sessiondom.AuthEvent){},
	}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (sessiondom.Identity, error) {
	id, token, err := c.provider.VerifyPassword(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return sessiondom.Identity{}, err
	}
	if err := c.tokens.SaveToken(token); err != nil {
		// the session still works until the process forgets this device
		log.Printf("[firebase.client] save token failed uid=%s err=%v", id.UID, err)
	}

	c.mu.Lock()
	cp := id
	c.current = &cp
	c.restored = true
	c.mu.Unlock()

	c.emit(sessiondom.AuthEvent{Type: sessiondom.EventSignedIn, Identity: &id})
	return id, nil
}

// SignUp creates the identity. The device stays signed out until the user
// confirms the address and signs in.
func (c *Client) SignUp(ctx context.Context, email, password string) (sessiondom.Identity, error) {
	return c.provider.CreateUser(ctx, strings.TrimSpace(email), password)
}

func (c *Client) SignOut(ctx context.Context) error {
	err := c.tokens.DeleteToken()

	c.mu.Lock()
	prev := c.current
	c.current = nil
	c.restored = true
	c.mu.Unlock()

	if prev != nil {
		c.emit(sessiondom.AuthEvent{Type: sessiondom.EventSignedOut})
	}
	return err
}

func (c *Client) DeleteIdentity(ctx context.Context, uid string) error {
	return c.provider.DeleteUser(ctx, uid)
}

// CurrentIdentity returns the signed-in identity, restoring it from the
// persisted token on first use.
func (c *Client) CurrentIdentity(ctx context.Context) (*sessiondom.Identity, error) {
	c.mu.Lock()
	restored := c.restored
	c.mu.Unlock()
	if !restored {
		if err := c.Restore(ctx); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, nil
	}
	cp := *c.current
	return &cp, nil
}

// Restore re-verifies the persisted token. An expired or revoked token is
// discarded and the device stays signed out. Transient errors are returned and
// the token is kept for the next attempt.
func (c *Client) Restore(ctx context.Context) error {
	token, err := c.tokens.LoadToken()
	if err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		c.mu.Lock()
		c.restored = true
		c.mu.Unlock()
		return nil
	}

	id, err := c.provider.VerifyToken(ctx, token)
	if err != nil {
		if !errors.Is(err, sessiondom.ErrNotSignedIn) {
			return err
		}
		if derr := c.tokens.DeleteToken(); derr != nil {
			log.Printf("[firebase.client] discard token failed err=%v", derr)
		}
		c.mu.Lock()
		prev := c.current
		c.current = nil
		c.restored = true
		c.mu.Unlock()
		if prev != nil {
			c.emit(sessiondom.AuthEvent{Type: sessiondom.EventSignedOut})
		}
		return nil
	}

	c.mu.Lock()
	changed := c.current == nil || c.current.UID != id.UID
	cp := id
	c.current = &cp
	c.restored = true
	c.mu.Unlock()

	if changed {
		c.emit(sessiondom.AuthEvent{Type: sessiondom.EventSignedIn, Identity: &id})
	}
	return nil
}

func (c *Client) OnAuthStateChange(fn func(sessiondom.AuthEvent)) func() {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.lmu.Lock()
		defer c.lmu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Client) emit(ev sessiondom.AuthEvent) {
	c.lmu.Lock()
	fns := make([]func(sessiondom.AuthEvent), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.lmu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
