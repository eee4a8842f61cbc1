// internal/platform/di/storefront/register.go
package storefront

import (
	"context"
	"log"
	"net/http"
	"time"

	sfhttp "cosmetica/internal/adapters/in/http/storefront"
	sfhandler "cosmetica/internal/adapters/in/http/storefront/handler"
)

// Register registers storefront routes plus /healthz and /metrics onto mux.
// Pure DI: construct handlers and pass into the storefront router.
func Register(mux *http.ServeMux, cont *Container) {
	if mux == nil || cont == nil {
		return
	}

	var (
		authObs  sfhandler.AuthObserver
		orderObs sfhandler.OrderObserver
	)
	if m := cont.Infra.Metrics; m != nil {
		authObs, orderObs = m, m
		mux.Handle("/metrics", m.Handler())
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := cont.Infra.Ping(ctx); err != nil {
			log.Printf("[storefront.health] ping failed: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("degraded"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	devices := cont.Sessions
	sfhttp.Register(mux, sfhttp.Deps{
		Catalog:  sfhandler.NewCatalogHandler(cont.Catalog, devices),
		Cart:     sfhandler.NewCartHandler(cont.Catalog, devices),
		Wishlist: sfhandler.NewWishlistHandler(cont.Catalog, devices),
		Checkout: sfhandler.NewCheckoutHandler(cont.Catalog, devices, orderObs),
		Auth:     sfhandler.NewAuthHandler(devices, authObs),
		Account:  sfhandler.NewAccountHandler(devices),
	})
}
