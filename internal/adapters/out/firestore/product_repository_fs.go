// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	productdom "cosmetica/internal/domain/product"
)

// ProductRepositoryFS reads the catalog from the "products" collection.
type ProductRepositoryFS struct {
	Client *firestore.Client
}

var _ productdom.Repository = (*ProductRepositoryFS)(nil)

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

// List loads the collection and narrows it with productdom.Select.
// Category and brand matching is case-insensitive, which Firestore equality
// filters cannot express, so filtering happens in memory.
func (r *ProductRepositoryFS) List(ctx context.Context, f productdom.Filter) ([]productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}

	it := r.col().Documents(ctx)
	defer it.Stop()

	var all []productdom.Product
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		all = append(all, docToProduct(doc))
	}
	return productdom.Select(all, f), nil
}

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (*productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, productdom.ErrInvalidID
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, productdom.ErrNotFound
		}
		return nil, err
	}
	p := docToProduct(snap)
	return &p, nil
}

func docToProduct(doc *firestore.DocumentSnapshot) productdom.Product {
	raw := doc.Data()
	p := productdom.Product{
		ID:          doc.Ref.ID,
		Name:        asString(raw["name"]),
		Brand:       asString(raw["brand"]),
		Category:    asString(raw["category"]),
		Description: asString(raw["description"]),
		Price:       asFloat(raw["price"]),
		Image:       asString(raw["image"]),
		InStock:     true,
	}
	if v, ok := raw["inStock"].(bool); ok {
		p.InStock = v
	}
	if t, ok := asTime(raw["createdAt"]); ok {
		p.CreatedAt = t.UTC()
	}
	if imgs, ok := raw["images"].([]any); ok {
		for _, v := range imgs {
			if s := strings.TrimSpace(asString(v)); s != "" {
				p.Images = append(p.Images, s)
			}
		}
	}
	if p.Image == "" && len(p.Images) > 0 {
		p.Image = p.Images[0]
	}
	return p
}
