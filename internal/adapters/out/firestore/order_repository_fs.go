// internal/adapters/out/firestore/order_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	orderdom "cosmetica/internal/domain/order"
)

// OrderRepositoryFS reads order history from the "orders" collection.
type OrderRepositoryFS struct {
	Client *firestore.Client
}

var _ orderdom.Repository = (*OrderRepositoryFS)(nil)

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) ordersCol() *firestore.CollectionRef {
	return r.Client.Collection("orders")
}

// ListByCustomer sorts in memory so the query needs no composite index.
func (r *OrderRepositoryFS) ListByCustomer(ctx context.Context, customerID string) ([]orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("order_repository_fs: firestore client is nil")
	}
	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return nil, orderdom.ErrInvalidCustomerID
	}

	it := r.ordersCol().Where("customerId", "==", cid).Documents(ctx)
	defer it.Stop()

	out := []orderdom.Order{}
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, docToOrder(doc))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func docToOrder(doc *firestore.DocumentSnapshot) orderdom.Order {
	raw := doc.Data()
	o := orderdom.Order{
		ID:         doc.Ref.ID,
		CustomerID: asString(raw["customerId"]),
		Status:     asString(raw["status"]),
		Total:      asFloat(raw["total"]),
		Items:      []orderdom.Item{},
	}
	if t, ok := asTime(raw["createdAt"]); ok {
		o.CreatedAt = t.UTC()
	}
	if items, ok := raw["items"].([]any); ok {
		for _, v := range items {
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			o.Items = append(o.Items, orderdom.Item{
				ProductID: asString(m["productId"]),
				Name:      asString(m["name"]),
				UnitPrice: asFloat(m["unitPrice"]),
				Quantity:  asInt(m["quantity"]),
				Image:     asString(m["image"]),
			})
		}
	}
	return o
}
