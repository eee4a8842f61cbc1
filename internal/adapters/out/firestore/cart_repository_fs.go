// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "cosmetica/internal/domain/cart"
)

// CartTTL is how long an untouched remote cart survives (Firestore TTL on expiresAt).
const CartTTL = 30 * 24 * time.Hour

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
// - collection: carts
// - docId: uid (docId is the source of truth)
// - fields: items(array), updatedAt, expiresAt
//
// TTL:
// - Configure Firestore TTL on "expiresAt"; every Upsert pushes it forward.
type CartRepositoryFS struct {
	Client *firestore.Client
	now    func() time.Time
}

var _ cartdom.Repository = (*CartRepositoryFS)(nil)

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client, now: func() time.Time { return time.Now().UTC() }}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

// Get returns (nil, nil) if not found (nil policy).
func (r *CartRepositoryFS) Get(ctx context.Context, userID string) (cartdom.Snapshot, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, errors.New("cart_repository_fs: userID is empty")
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	return linesFromData(snap.Data()), nil
}

// Upsert overwrites the full doc (simple & predictable).
func (r *CartRepositoryFS) Upsert(ctx context.Context, userID string, s cartdom.Snapshot) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return errors.New("cart_repository_fs: userID is empty")
	}

	now := r.now()
	doc := cartDoc{
		Items:     make([]cartLineDoc, 0, len(s)),
		UpdatedAt: now,
		ExpiresAt: now.Add(CartTTL),
	}
	for _, l := range s {
		if strings.TrimSpace(l.ProductID) == "" || l.Quantity <= 0 {
			continue
		}
		doc.Items = append(doc.Items, cartLineDoc(l))
	}

	_, err := r.col().Doc(uid).Set(ctx, doc)
	return err
}

// Delete is idempotent: deleting a missing doc succeeds.
func (r *CartRepositoryFS) Delete(ctx context.Context, userID string) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return errors.New("cart_repository_fs: userID is empty")
	}
	_, err := r.col().Doc(uid).Delete(ctx)
	return err
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type cartDoc struct {
	Items     []cartLineDoc `firestore:"items"`
	UpdatedAt time.Time     `firestore:"updatedAt"`
	ExpiresAt time.Time     `firestore:"expiresAt"`
}

type cartLineDoc struct {
	ProductID string  `firestore:"productId"`
	Name      string  `firestore:"name"`
	UnitPrice float64 `firestore:"unitPrice"`
	Image     string  `firestore:"image"`
	Quantity  int     `firestore:"quantity"`
}

// linesFromData parses the doc by hand so older shapes still load.
//
// Supported shapes:
// 1) items: [{productId, name, unitPrice, image, quantity}]
// 2) items: map[productId] = quantity (legacy, name/price unknown)
func linesFromData(raw map[string]any) cartdom.Snapshot {
	out := cartdom.Snapshot{}
	if raw == nil {
		return out
	}

	switch items := raw["items"].(type) {
	case []any:
		for _, v := range items {
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			qty := asInt(m["quantity"])
			if qty <= 0 {
				// legacy field name
				qty = asInt(m["qty"])
			}
			l := cartdom.Line{
				ProductID: strings.TrimSpace(asString(m["productId"])),
				Name:      asString(m["name"]),
				UnitPrice: asFloat(m["unitPrice"]),
				Image:     asString(m["image"]),
				Quantity:  qty,
			}
			if l.ProductID == "" || l.Quantity <= 0 {
				continue
			}
			out = append(out, l)
		}
	case map[string]any:
		for k, v := range items {
			id := strings.TrimSpace(k)
			qty := asInt(v)
			if id == "" || qty <= 0 {
				continue
			}
			out = append(out, cartdom.Line{ProductID: id, Quantity: qty})
		}
	}

	// merge duplicates, keep order
	return cartdom.New(out).Snapshot()
}
