// internal/platform/di/shared/runtime_settings.go
package shared

import (
	"errors"
	"strings"
	"time"

	"cosmetica/internal/application/persist"
	appcfg "cosmetica/internal/infra/config"
)

// RuntimeSettings is config-resolved runtime settings (normalized once).
// It intentionally contains only "values" (no external clients).
//
// Policy:
// - Apply defaults for zero values.
// - Keep normalization (trim, trailing slash removal) here.
// - Keep hard validation in runtime_settings_validate.go.
type RuntimeSettings struct {
	StorefrontBaseURL string
	CORSAllowOrigin   string

	ProductImageBucket string
	ImageSignedURLs    bool
	ImageURLTTL        time.Duration

	ReconcilePolicy    persist.ReconcilePolicy
	CartSyncDebounce   time.Duration
	RemoteWriteTimeout time.Duration
	CheckoutDelay      time.Duration
	SessionIdleTTL     time.Duration

	MailEnabled bool
}

// ResolveRuntimeSettings resolves and normalizes runtime settings from cfg.
//
// Notes:
// - This function is side-effect free (no logging).
// - It returns warnings as strings so callers can decide how to surface them.
func ResolveRuntimeSettings(cfg *appcfg.Config) (RuntimeSettings, []string, error) {
	if cfg == nil {
		return RuntimeSettings{}, nil, errors.New("shared.runtime_settings: cfg is nil")
	}

	var warns []string
	s := RuntimeSettings{
		StorefrontBaseURL:  normalizeBaseURL(cfg.StorefrontBaseURL),
		CORSAllowOrigin:    strings.TrimSpace(cfg.CORSAllowOrigin),
		ProductImageBucket: strings.TrimSpace(cfg.ProductImageBucket),
		ImageSignedURLs:    cfg.ImageSignedURLs,
		ImageURLTTL:        orDefault(cfg.ImageURLTTL, 15*time.Minute),
		ReconcilePolicy:    persist.ParsePolicy(cfg.ReconcilePolicy),
		CartSyncDebounce:   orDefault(cfg.CartSyncDebounce, persist.DefaultDelay),
		RemoteWriteTimeout: orDefault(cfg.RemoteWriteTimeout, persist.DefaultTimeout),
		CheckoutDelay:      cfg.CheckoutDelay,
		SessionIdleTTL:     orDefault(cfg.SessionIdleTTL, 30*time.Minute),
		MailEnabled:        strings.TrimSpace(cfg.SendGridAPIKey) != "" || strings.TrimSpace(cfg.SendGridAPIKeySecret) != "",
	}

	if v := strings.TrimSpace(cfg.ReconcilePolicy); v != "" && string(s.ReconcilePolicy) != strings.ToLower(v) {
		warns = append(warns, "RECONCILE_POLICY="+v+" is unknown; using "+string(s.ReconcilePolicy))
	}
	if s.CORSAllowOrigin == "" {
		s.CORSAllowOrigin = "*"
	}
	if s.ProductImageBucket == "" && !cfg.UseMemoryStore() {
		warns = append(warns, "PRODUCT_IMAGE_BUCKET is empty (bare image paths are served as-is)")
	}
	if s.ImageSignedURLs && s.ProductImageBucket == "" {
		warns = append(warns, "IMAGE_SIGNED_URLS=true without PRODUCT_IMAGE_BUCKET only signs gs:// references")
	}
	if !s.MailEnabled {
		warns = append(warns, "SENDGRID_API_KEY is empty (mails are logged, not sent)")
	}

	if err := s.Validate(); err != nil {
		return RuntimeSettings{}, warns, err
	}
	return s, warns, nil
}

func normalizeBaseURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
