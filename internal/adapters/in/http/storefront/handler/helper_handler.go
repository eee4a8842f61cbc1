// internal/adapters/in/http/storefront/handler/helper_handler.go
package storefrontHandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"cosmetica/internal/adapters/in/http/middleware"
	accountuc "cosmetica/internal/application/usecase/account"
	authuc "cosmetica/internal/application/usecase/auth"
	cartuc "cosmetica/internal/application/usecase/cart"
	checkoutuc "cosmetica/internal/application/usecase/checkout"
	wishlistuc "cosmetica/internal/application/usecase/wishlist"
	"cosmetica/internal/application/validation"
	productdom "cosmetica/internal/domain/product"
)

// ============================================================
// Shared types
// ============================================================

// Device is the set of containers owned by one device (one "browser").
type Device struct {
	ID       string
	Auth     *authuc.Store
	Cart     *cartuc.Store
	Wishlist *wishlistuc.Store
	Checkout *checkoutuc.Service
	Account  *accountuc.Service
}

// DeviceResolver returns (building lazily) the containers of a device.
type DeviceResolver interface {
	Resolve(ctx context.Context, deviceID string) (*Device, error)
}

// Catalog is satisfied by catalog.Service.
type Catalog interface {
	List(ctx context.Context, f productdom.Filter) ([]productdom.Product, error)
	Get(ctx context.Context, id string) (*productdom.Product, error)
	// Lookup keeps stored image references (cart/wishlist rows).
	Lookup(ctx context.Context, id string) (*productdom.Product, error)
	ImageURL(ctx context.Context, ref string) string
}

// ErrUnavailable is returned by a DeviceResolver that is shutting down.
var ErrUnavailable = errors.New("storefront: device sessions unavailable")

const maxBodyBytes = 1 << 20

// ============================================================
// Shared helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, tag string) {
	writeJSON(w, code, map[string]string{"error": strings.TrimSpace(tag)})
}

func writeErrMsg(w http.ResponseWriter, code int, tag, msg string) {
	writeJSON(w, code, map[string]string{"error": tag, "message": strings.TrimSpace(msg)})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed")
}

func notFound(w http.ResponseWriter) {
	writeErr(w, http.StatusNotFound, "not_found")
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErrMsg(w, http.StatusBadRequest, "bad_request", msg)
}

func internalError(w http.ResponseWriter, msg string) {
	writeErrMsg(w, http.StatusInternalServerError, "internal", msg)
}

// writeValidation answers 400 with per-field messages when err is a form
// validation error. It reports whether it wrote.
func writeValidation(w http.ResponseWriter, err error) bool {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation",
		"fields": verrs,
	})
	return true
}

func notSignedIn(w http.ResponseWriter) {
	writeErr(w, http.StatusUnauthorized, "not_signed_in")
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// cleanPath trims the trailing slash ("/" stays "/").
func cleanPath(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return p
}

func queryBool(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// device resolves the containers of the requesting device, writing the error
// response itself when it cannot.
func device(w http.ResponseWriter, r *http.Request, devices DeviceResolver, tag string) (*Device, bool) {
	if devices == nil {
		internalError(w, "device sessions are not configured")
		return nil, false
	}
	id, ok := middleware.DeviceID(r)
	if !ok {
		badRequest(w, "missing device")
		return nil, false
	}
	d, err := devices.Resolve(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			writeErr(w, http.StatusServiceUnavailable, "unavailable")
			return nil, false
		}
		log.Printf("[%s] resolve device failed err=%v", tag, err)
		internalError(w, "could not load session")
		return nil, false
	}
	return d, true
}

// productError maps catalog lookups to responses.
func productError(w http.ResponseWriter, err error, tag string) {
	switch {
	case errors.Is(err, productdom.ErrInvalidID):
		badRequest(w, "productId is required")
	case errors.Is(err, productdom.ErrNotFound):
		writeErr(w, http.StatusNotFound, "product_not_found")
	default:
		log.Printf("[%s] product lookup failed err=%v", tag, err)
		writeErrMsg(w, http.StatusBadGateway, "upstream", "could not load product")
	}
}
