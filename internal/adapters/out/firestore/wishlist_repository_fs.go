// internal/adapters/out/firestore/wishlist_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	wldom "cosmetica/internal/domain/wishlist"
)

// WishlistRepositoryFS implements wishlist.Repository.
//
// Storage:
// - customers/{customerId}/wishlist/{productId}
// - fields: productId, name, price, image, position, addedAt
type WishlistRepositoryFS struct {
	Client *firestore.Client
}

var _ wldom.Repository = (*WishlistRepositoryFS)(nil)

func NewWishlistRepositoryFS(client *firestore.Client) *WishlistRepositoryFS {
	return &WishlistRepositoryFS{Client: client}
}

func (r *WishlistRepositoryFS) col(customerID string) *firestore.CollectionRef {
	return r.Client.Collection("customers").Doc(customerID).Collection("wishlist")
}

func (r *WishlistRepositoryFS) Get(ctx context.Context, customerID string) (wldom.Snapshot, bool, error) {
	if r == nil || r.Client == nil {
		return nil, false, errors.New("wishlist_repository_fs: firestore client is nil")
	}
	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return nil, false, errors.New("wishlist_repository_fs: customerID is empty")
	}

	it := r.col(cid).Documents(ctx)
	defer it.Stop()

	type row struct {
		e   wldom.Entry
		pos int
		at  time.Time
	}
	var rows []row
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, false, err
		}
		raw := doc.Data()
		e := wldom.Entry{
			ProductID: strings.TrimSpace(asString(raw["productId"])),
			Name:      asString(raw["name"]),
			Price:     asFloat(raw["price"]),
			Image:     asString(raw["image"]),
		}
		if e.ProductID == "" {
			e.ProductID = doc.Ref.ID
		}
		at, _ := asTime(raw["addedAt"])
		rows = append(rows, row{e: e, pos: asInt(raw["position"]), at: at})
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	// entries written by other clients carry no position; fall back to addedAt
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].pos != rows[j].pos {
			return rows[i].pos < rows[j].pos
		}
		return rows[i].at.Before(rows[j].at)
	})
	out := make(wldom.Snapshot, 0, len(rows))
	for _, rw := range rows {
		out = append(out, rw.e)
	}
	return out, true, nil
}

// Replace makes the subcollection equal to s in one transaction.
func (r *WishlistRepositoryFS) Replace(ctx context.Context, customerID string, s wldom.Snapshot) error {
	if r == nil || r.Client == nil {
		return errors.New("wishlist_repository_fs: firestore client is nil")
	}
	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return errors.New("wishlist_repository_fs: customerID is empty")
	}

	keep := make(map[string]struct{}, len(s))
	for _, e := range s {
		keep[strings.TrimSpace(e.ProductID)] = struct{}{}
	}
	now := time.Now().UTC()

	return r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// reads first (transaction rule)
		existing, err := tx.Documents(r.col(cid)).GetAll()
		if err != nil {
			return err
		}
		addedAt := make(map[string]time.Time, len(existing))
		for _, doc := range existing {
			if t, ok := asTime(doc.Data()["addedAt"]); ok {
				addedAt[doc.Ref.ID] = t
			}
			if _, ok := keep[doc.Ref.ID]; !ok {
				if err := tx.Delete(doc.Ref); err != nil {
					return err
				}
			}
		}

		for i, e := range s {
			id := strings.TrimSpace(e.ProductID)
			if id == "" {
				continue
			}
			at, ok := addedAt[id]
			if !ok {
				at = now
			}
			err := tx.Set(r.col(cid).Doc(id), map[string]any{
				"productId": id,
				"name":      e.Name,
				"price":     e.Price,
				"image":     e.Image,
				"position":  i,
				"addedAt":   at,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteEntry is idempotent.
func (r *WishlistRepositoryFS) DeleteEntry(ctx context.Context, customerID, productID string) error {
	if r == nil || r.Client == nil {
		return errors.New("wishlist_repository_fs: firestore client is nil")
	}
	cid, pid := strings.TrimSpace(customerID), strings.TrimSpace(productID)
	if cid == "" || pid == "" {
		return errors.New("wishlist_repository_fs: customerID/productID is empty")
	}
	_, err := r.col(cid).Doc(pid).Delete(ctx)
	return err
}
