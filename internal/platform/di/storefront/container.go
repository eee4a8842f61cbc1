// internal/platform/di/storefront/container.go
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log"

	dbout "cosmetica/internal/adapters/out/db"
	outfs "cosmetica/internal/adapters/out/firestore"
	gcso "cosmetica/internal/adapters/out/gcs"
	mailout "cosmetica/internal/adapters/out/mail"
	"cosmetica/internal/adapters/out/memory"
	cataloguc "cosmetica/internal/application/usecase/catalog"
	orderdom "cosmetica/internal/domain/order"
	productdom "cosmetica/internal/domain/product"
	shared "cosmetica/internal/platform/di/shared"
)

// Container is the storefront DI container.
// Pure DI: build deps only. No routing here.
type Container struct {
	Infra *shared.Infra

	Catalog  *cataloguc.Service
	Sessions *Sessions
}

// NewContainer builds the process-wide ports and the device session registry.
func NewContainer(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil || infra.Config == nil {
		return nil, errors.New("storefront.di: infra is nil")
	}
	cfg := infra.Config
	st := infra.Settings

	identity, err := shared.NewIdentity(ctx, infra)
	if err != nil {
		return nil, err
	}

	var (
		ports    Ports
		products productdom.Repository
	)
	if cfg.UseMemoryStore() {
		products = memory.NewProductRepository(devProducts()...)
		ports = Ports{
			Profiles:  memory.NewCustomerRepository(),
			Carts:     memory.NewCartRepository(),
			Wishlists: memory.NewWishlistRepository(),
			Orders:    memory.NewOrderRepository(),
		}
		log.Printf("[storefront.di] STORE_BACKEND=memory: in-process repositories, %d seeded products", len(devProducts()))
	} else {
		if infra.Firestore == nil || infra.Firestore.Client == nil {
			return nil, errors.New("storefront.di: firestore client is nil")
		}
		fs := infra.Firestore.Client
		products = outfs.NewProductRepositoryFS(fs)
		ports = Ports{
			Profiles:  outfs.NewCustomerRepositoryFS(fs),
			Carts:     outfs.NewCartRepositoryFS(fs),
			Wishlists: outfs.NewWishlistRepositoryFS(fs),
			Orders:    outfs.NewOrderRepositoryFS(fs),
		}
	}
	ports.Identity = identity.Provider

	if cfg.UsePostgresOrders() {
		orders, err := newPostgresOrders(ctx, infra)
		if err != nil {
			return nil, err
		}
		ports.Orders = orders
	}

	// product images
	images := gcso.NewProductImageResolver(infra.GCS, st.ProductImageBucket, st.ImageSignedURLs, st.ImageURLTTL)
	catalog := cataloguc.NewService(products, images)

	// mail (verification + order confirmation)
	if st.MailEnabled || cfg.UseMemoryStore() {
		var links mailout.LinkIssuer
		if identity.Firebase != nil {
			links = identity.Firebase
		}
		key := shared.ResolveSendGridKey(ctx, infra)
		ports.Mailer = mailout.NewStorefrontMailerFromConfig(key, cfg.SendGridFrom, st.StorefrontBaseURL, links)
	}

	opts := SessionOptions{
		Policy:        st.ReconcilePolicy,
		Debounce:      st.CartSyncDebounce,
		WriteTimeout:  st.RemoteWriteTimeout,
		CheckoutDelay: st.CheckoutDelay,
		IdleTTL:       st.SessionIdleTTL,
	}
	if infra.Metrics != nil {
		m := infra.Metrics
		opts.Observer = m
		opts.OnCountChange = func(n int) { m.ActiveSessions.Set(float64(n)) }
	}

	sessions := NewSessions(ports, infra.Local, opts)
	log.Printf("[storefront.di] container ready policy=%s debounce=%s idleTTL=%s", opts.Policy, opts.Debounce, opts.IdleTTL)

	return &Container{
		Infra:    infra,
		Catalog:  catalog,
		Sessions: sessions,
	}, nil
}

func newPostgresOrders(ctx context.Context, infra *shared.Infra) (orderdom.Repository, error) {
	if infra.OrdersDB == nil || infra.OrdersDB.Client == nil {
		return nil, errors.New("storefront.di: ORDERS_BACKEND=postgres but database is not connected")
	}
	repo := dbout.NewOrderRepositoryPG(infra.OrdersDB.Client)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("storefront.di: orders schema: %w", err)
	}
	log.Printf("[storefront.di] order history from PostgreSQL")
	return repo, nil
}

// Close flushes every device session. Infra is closed by its owner.
func (c *Container) Close(ctx context.Context) {
	if c == nil || c.Sessions == nil {
		return
	}
	c.Sessions.Close(ctx)
}
