// internal/adapters/in/http/storefront/router.go
package storefront

import (
	"log"
	"net/http"
)

// Deps is the storefront (view layer) handler set.
type Deps struct {
	Catalog  http.Handler
	Cart     http.Handler
	Wishlist http.Handler
	Checkout http.Handler
	Auth     http.Handler
	Account  http.Handler
}

// handleSafe registers pattern with h.
// If h is nil, it logs and registers NotFoundHandler instead.
func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	if h == nil {
		log.Printf("[storefront.router] WARN: nil handler: %s pattern=%s (registering NotFoundHandler)", name, pattern)
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// Register registers storefront routes onto mux.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	// catalog
	handleSafe(mux, "/storefront/products", deps.Catalog, "Catalog")
	handleSafe(mux, "/storefront/products/", deps.Catalog, "Catalog")

	// cart
	handleSafe(mux, "/storefront/cart", deps.Cart, "Cart")
	handleSafe(mux, "/storefront/cart/", deps.Cart, "Cart")

	// wishlist
	handleSafe(mux, "/storefront/wishlist", deps.Wishlist, "Wishlist")
	handleSafe(mux, "/storefront/wishlist/", deps.Wishlist, "Wishlist")

	// checkout
	handleSafe(mux, "/storefront/checkout", deps.Checkout, "Checkout")

	// auth
	handleSafe(mux, "/storefront/auth/", deps.Auth, "Auth")

	// account
	handleSafe(mux, "/storefront/account", deps.Account, "Account")
	handleSafe(mux, "/storefront/account/", deps.Account, "Account")
}
