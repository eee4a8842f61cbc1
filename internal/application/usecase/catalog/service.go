// internal/application/usecase/catalog/service.go
package catalog

import (
	"context"
	"strings"

	productdom "cosmetica/internal/domain/product"
)

// ImageResolver turns a stored image reference (object path, gs:// URL or
// absolute URL) into something a browser can load.
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) string
}

// passthrough leaves references untouched.
type passthrough struct{}

func (passthrough) Resolve(_ context.Context, ref string) string { return ref }

// DefaultLimit caps listings when the caller does not ask for a limit.
const DefaultLimit = 60

type Service struct {
	products productdom.Repository
	images   ImageResolver
}

func NewService(products productdom.Repository, images ImageResolver) *Service {
	if images == nil {
		images = passthrough{}
	}
	return &Service{products: products, images: images}
}

func (s *Service) List(ctx context.Context, f productdom.Filter) ([]productdom.Product, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	f.Category = strings.TrimSpace(f.Category)
	f.Brand = strings.TrimSpace(f.Brand)

	items, err := s.products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = s.resolve(ctx, items[i])
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (*productdom.Product, error) {
	p, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	out := s.resolve(ctx, *p)
	return &out, nil
}

// Lookup returns the product with its stored image references, for callers
// that keep the reference (cart lines, wishlist entries) and resolve it later.
func (s *Service) Lookup(ctx context.Context, id string) (*productdom.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, productdom.ErrInvalidID
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, productdom.ErrNotFound
	}
	return p, nil
}

// ImageURL resolves one stored image reference.
func (s *Service) ImageURL(ctx context.Context, ref string) string {
	return s.images.Resolve(ctx, ref)
}

func (s *Service) resolve(ctx context.Context, p productdom.Product) productdom.Product {
	p.Image = s.images.Resolve(ctx, p.Image)
	if len(p.Images) > 0 {
		imgs := make([]string, len(p.Images))
		for i, ref := range p.Images {
			imgs[i] = s.images.Resolve(ctx, ref)
		}
		p.Images = imgs
	}
	return p
}
