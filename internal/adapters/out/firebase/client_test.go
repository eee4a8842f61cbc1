package firebase

import (
	"context"
	"errors"
	"testing"

	"cosmetica/internal/adapters/out/memory"
	sessiondom "cosmetica/internal/domain/session"
)

func TestClient_EmitsEventsAndPersistsToken(t *testing.T) {
	ids := memory.NewIdentities()
	tokens := &memory.Tokens{}
	ctx := context.Background()
	if _, err := ids.CreateUser(ctx, "ana@example.com", "secret1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	c := NewClient(ids, tokens)
	var events []sessiondom.EventType
	unsub := c.OnAuthStateChange(func(ev sessiondom.AuthEvent) { events = append(events, ev.Type) })
	defer unsub()

	if _, err := c.SignIn(ctx, "ana@example.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if tok, _ := tokens.LoadToken(); tok == "" {
		t.Fatalf("token not persisted")
	}
	if err := c.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if tok, _ := tokens.LoadToken(); tok != "" {
		t.Fatalf("token not cleared on sign out")
	}

	want := []sessiondom.EventType{sessiondom.EventSignedIn, sessiondom.EventSignedOut}
	if len(events) != len(want) || events[0] != want[0] || events[1] != want[1] {
		t.Fatalf("events = %v, want %v", events, want)
	}
}

func TestClient_SignInWrongPassword(t *testing.T) {
	ids := memory.NewIdentities()
	_, _ = ids.CreateUser(context.Background(), "ana@example.com", "secret1")

	c := NewClient(ids, &memory.Tokens{})
	_, err := c.SignIn(context.Background(), "ana@example.com", "nope")
	if !errors.Is(err, sessiondom.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestClient_RestoreDiscardsInvalidToken(t *testing.T) {
	tokens := &memory.Tokens{}
	_ = tokens.SaveToken("stale-token")

	c := NewClient(memory.NewIdentities(), tokens)
	id, err := c.CurrentIdentity(context.Background())
	if err != nil || id != nil {
		t.Fatalf("identity = %+v err=%v, want signed out", id, err)
	}
	if tok, _ := tokens.LoadToken(); tok != "" {
		t.Fatalf("stale token should be discarded")
	}
}

func TestClient_SignUpDoesNotSignIn(t *testing.T) {
	c := NewClient(memory.NewIdentities(), &memory.Tokens{})
	if _, err := c.SignUp(context.Background(), "new@example.com", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	id, _ := c.CurrentIdentity(context.Background())
	if id != nil {
		t.Fatalf("sign up must not create a session")
	}
	if _, err := c.SignUp(context.Background(), "NEW@example.com", "other12"); !errors.Is(err, sessiondom.ErrAlreadyRegistered) {
		t.Fatalf("duplicate sign up err = %v", err)
	}
}
