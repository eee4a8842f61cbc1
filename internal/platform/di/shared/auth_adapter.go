// internal/platform/di/shared/auth_adapter.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"log"

	fbout "cosmetica/internal/adapters/out/firebase"
	"cosmetica/internal/adapters/out/memory"
	sessiondom "cosmetica/internal/domain/session"
)

// Identity bundles the process-wide identity provider with the optional
// Firebase backend (verification links need it).
type Identity struct {
	Provider sessiondom.Provider
	Firebase *fbout.Backend // nil in memory mode
}

// NewIdentity builds the identity provider.
// Firestore mode requires Firebase Auth and a web API key (direct or from Secret Manager).
func NewIdentity(ctx context.Context, inf *Infra) (Identity, error) {
	if inf == nil || inf.Config == nil {
		return Identity{}, errors.New("shared.identity: infra is nil")
	}
	if inf.Config.UseMemoryStore() {
		log.Printf("[shared.identity] using in-memory identities (STORE_BACKEND=memory)")
		return Identity{Provider: memory.NewIdentities()}, nil
	}
	if inf.FirebaseAuth == nil {
		return Identity{}, errors.New("shared.identity: firebase auth is not initialized")
	}

	apiKey, err := inf.Secrets.Resolve(ctx, inf.Config.FirebaseWebAPIKey, inf.Config.FirebaseWebAPIKeySecret)
	if err != nil {
		return Identity{}, fmt.Errorf("shared.identity: web api key: %w", err)
	}
	if apiKey == "" {
		return Identity{}, errors.New("shared.identity: FIREBASE_WEB_API_KEY (or FIREBASE_WEB_API_KEY_SECRET) is required")
	}

	backend, err := fbout.NewBackend(ctx, inf.FirebaseAuth, apiKey, fbout.DefaultSessionTTL)
	if err != nil {
		return Identity{}, fmt.Errorf("shared.identity: %w", err)
	}
	log.Printf("[shared.identity] Firebase identity backend ready")
	return Identity{Provider: backend, Firebase: backend}, nil
}

// ResolveSendGridKey returns the SendGrid key (direct or Secret Manager).
// A lookup failure is logged and treated as "no key".
func ResolveSendGridKey(ctx context.Context, inf *Infra) string {
	if inf == nil || inf.Config == nil {
		return ""
	}
	key, err := inf.Secrets.Resolve(ctx, inf.Config.SendGridAPIKey, inf.Config.SendGridAPIKeySecret)
	if err != nil {
		log.Printf("[shared.identity] WARN: sendgrid key lookup failed: %v", err)
		return ""
	}
	return key
}
