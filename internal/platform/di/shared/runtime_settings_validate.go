// internal/platform/di/shared/runtime_settings_validate.go
package shared

import (
	"fmt"
	"net/url"
	"strings"

	"cosmetica/internal/application/persist"
)

// Validate performs hard validation for RuntimeSettings.
//
// Policy:
//   - It fails fast for values that would cause undefined behavior,
//     while allowing optional features to remain disabled when settings are empty.
func (s RuntimeSettings) Validate() error {
	u := strings.TrimSpace(s.StorefrontBaseURL)
	if u == "" {
		return fmt.Errorf("shared.runtime_settings: StorefrontBaseURL is empty")
	}
	parsed, err := url.Parse(u)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("shared.runtime_settings: StorefrontBaseURL must be an http(s) URL (got %q)", u)
	}

	switch s.ReconcilePolicy {
	case persist.PreferRemote, persist.UnionMerge:
	default:
		return fmt.Errorf("shared.runtime_settings: unknown ReconcilePolicy %q", s.ReconcilePolicy)
	}

	// shutdown flushes are bounded by RemoteWriteTimeout
	if s.CartSyncDebounce >= s.RemoteWriteTimeout {
		return fmt.Errorf("shared.runtime_settings: CartSyncDebounce (%s) must be shorter than RemoteWriteTimeout (%s)",
			s.CartSyncDebounce, s.RemoteWriteTimeout)
	}
	if s.CheckoutDelay < 0 {
		return fmt.Errorf("shared.runtime_settings: CheckoutDelay is negative")
	}
	return nil
}
