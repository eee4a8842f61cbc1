package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CART_SYNC_DEBOUNCE_MS", "")
	t.Setenv("CHECKOUT_DELAY_MS", "")
	t.Setenv("STORE_BACKEND", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.CartSyncDebounce != 300*time.Millisecond {
		t.Errorf("CartSyncDebounce = %s", cfg.CartSyncDebounce)
	}
	if cfg.CheckoutDelay != 1500*time.Millisecond {
		t.Errorf("CheckoutDelay = %s", cfg.CheckoutDelay)
	}
	if cfg.UseMemoryStore() {
		t.Errorf("default backend should be firestore")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "cosmetica-dev")
	t.Setenv("FIRESTORE_PROJECT_ID", "")
	t.Setenv("CART_SYNC_DEBOUNCE_MS", "50")
	t.Setenv("SESSION_IDLE_TTL", "5m")
	t.Setenv("REMOTE_WRITE_TIMEOUT", "bogus")
	t.Setenv("IMAGE_SIGNED_URLS", "true")
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("STOREFRONT_BASE_URL", "https://shop.example/")

	cfg := Load()
	if cfg.FirestoreProjectID != "cosmetica-dev" {
		t.Errorf("FirestoreProjectID = %q, want GCP_PROJECT_ID fallback", cfg.FirestoreProjectID)
	}
	if cfg.CartSyncDebounce != 50*time.Millisecond || cfg.SessionIdleTTL != 5*time.Minute {
		t.Errorf("durations = %s %s", cfg.CartSyncDebounce, cfg.SessionIdleTTL)
	}
	if cfg.RemoteWriteTimeout != 10*time.Second {
		t.Errorf("invalid duration should fall back, got %s", cfg.RemoteWriteTimeout)
	}
	if !cfg.ImageSignedURLs || !cfg.UseMemoryStore() {
		t.Errorf("flags not parsed: %+v", cfg)
	}
	if cfg.StorefrontBaseURL != "https://shop.example" {
		t.Errorf("StorefrontBaseURL = %q", cfg.StorefrontBaseURL)
	}
}
