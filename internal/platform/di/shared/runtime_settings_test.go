package shared

import (
	"strings"
	"testing"
	"time"

	"cosmetica/internal/application/persist"
	appcfg "cosmetica/internal/infra/config"
)

func baseConfig() *appcfg.Config {
	return &appcfg.Config{
		StoreBackend:       "memory",
		StorefrontBaseURL:  "https://shop.example.com/",
		ReconcilePolicy:    "union_merge",
		CartSyncDebounce:   300 * time.Millisecond,
		RemoteWriteTimeout: 10 * time.Second,
		CheckoutDelay:      1500 * time.Millisecond,
	}
}

func TestResolveRuntimeSettings_Normalizes(t *testing.T) {
	s, warns, err := ResolveRuntimeSettings(baseConfig())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.StorefrontBaseURL != "https://shop.example.com" {
		t.Fatalf("base url = %q", s.StorefrontBaseURL)
	}
	if s.ReconcilePolicy != persist.UnionMerge || s.CORSAllowOrigin != "*" || s.SessionIdleTTL != 30*time.Minute {
		t.Fatalf("settings = %+v", s)
	}
	if len(warns) != 1 || !strings.Contains(warns[0], "SENDGRID_API_KEY") {
		t.Fatalf("warns = %v", warns)
	}
}

func TestResolveRuntimeSettings_UnknownPolicyWarns(t *testing.T) {
	cfg := baseConfig()
	cfg.ReconcilePolicy = "last_write_wins"
	s, warns, err := ResolveRuntimeSettings(cfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.ReconcilePolicy != persist.PreferRemote {
		t.Fatalf("policy = %s", s.ReconcilePolicy)
	}
	if len(warns) != 2 {
		t.Fatalf("warns = %v", warns)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*appcfg.Config){
		"relative base url": func(c *appcfg.Config) { c.StorefrontBaseURL = "shop.example.com" },
		"debounce too long": func(c *appcfg.Config) { c.CartSyncDebounce = 20 * time.Second },
		"negative delay":    func(c *appcfg.Config) { c.CheckoutDelay = -time.Second },
	}
	for name, mutate := range cases {
		cfg := baseConfig()
		mutate(cfg)
		if _, _, err := ResolveRuntimeSettings(cfg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestRedactPath(t *testing.T) {
	if got := redactPath(`C:\keys\sa.json`); got != "***/sa.json" {
		t.Fatalf("got %q", got)
	}
}
