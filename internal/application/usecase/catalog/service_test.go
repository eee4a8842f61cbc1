package catalog

import (
	"context"
	"errors"
	"testing"

	"cosmetica/internal/adapters/out/memory"
	productdom "cosmetica/internal/domain/product"
)

type prefixResolver string

func (p prefixResolver) Resolve(_ context.Context, ref string) string {
	if ref == "" {
		return ""
	}
	return string(p) + ref
}

func TestList_ResolvesImages(t *testing.T) {
	repo := memory.NewProductRepository(
		productdom.Product{ID: "p1", Name: "Toner", Category: "skincare", Image: "products/p1.jpg", Images: []string{"products/p1-b.jpg"}},
		productdom.Product{ID: "p2", Name: "Lip", Category: "makeup"},
	)
	svc := NewService(repo, prefixResolver("https://cdn.example/"))

	got, err := svc.List(context.Background(), productdom.Filter{Category: " skincare "})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Image != "https://cdn.example/products/p1.jpg" || got[0].Images[0] != "https://cdn.example/products/p1-b.jpg" {
		t.Fatalf("got %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(memory.NewProductRepository(), nil)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, productdom.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(context.Background(), "  "); !errors.Is(err, productdom.ErrInvalidID) {
		t.Fatalf("err = %v, want ErrInvalidID", err)
	}
}
