// internal/adapters/in/http/middleware/device.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeviceCookie identifies one "browser": its local storage namespace and its
// auth/cart/wishlist containers.
const DeviceCookie = "sf_device"

const deviceCookieMaxAge = 365 * 24 * time.Hour

// context key は衝突回避のため独自型を使用
type ctxKey struct{ name string }

var ctxKeyDevice = ctxKey{name: "deviceId"}

// Device makes sure every request carries a device id, issuing a new cookie
// when the request has none (or a malformed one).
func Device(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(DeviceCookie); err == nil {
				if u, err := uuid.Parse(strings.TrimSpace(c.Value)); err == nil {
					id = u.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     DeviceCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(deviceCookieMaxAge / time.Second),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithDeviceID(r.Context(), id)))
		})
	}
}

func WithDeviceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyDevice, id)
}

// DeviceID returns the id injected by Device.
func DeviceID(r *http.Request) (string, bool) {
	v, ok := r.Context().Value(ctxKeyDevice).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
