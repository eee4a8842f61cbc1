// internal/adapters/out/firestore/customer_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	customerdom "cosmetica/internal/domain/customer"
)

// CustomerRepositoryFS implements customer.Repository.
// collection: customers, docId: uid
type CustomerRepositoryFS struct {
	Client *firestore.Client
}

var _ customerdom.Repository = (*CustomerRepositoryFS)(nil)

func NewCustomerRepositoryFS(client *firestore.Client) *CustomerRepositoryFS {
	return &CustomerRepositoryFS{Client: client}
}

func (r *CustomerRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("customers")
}

func (r *CustomerRepositoryFS) GetByID(ctx context.Context, id string) (*customerdom.Profile, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("customer_repository_fs: firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, customerdom.ErrInvalidID
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, customerdom.ErrNotFound
		}
		return nil, err
	}

	p := profileFromData(snap.Ref.ID, snap.Data())
	return &p, nil
}

func (r *CustomerRepositoryFS) Upsert(ctx context.Context, p customerdom.Profile) error {
	if r == nil || r.Client == nil {
		return errors.New("customer_repository_fs: firestore client is nil")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := r.col().Doc(strings.TrimSpace(p.ID)).Set(ctx, p)
	return err
}

// Update patches the given fields only; an empty address string clears the
// field. Returns ErrNotFound when the row does not exist.
func (r *CustomerRepositoryFS) Update(ctx context.Context, id string, patch customerdom.Patch) error {
	if r == nil || r.Client == nil {
		return errors.New("customer_repository_fs: firestore client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return customerdom.ErrInvalidID
	}
	if patch.IsEmpty() {
		return nil
	}

	_, err := r.col().Doc(id).Update(ctx, profileUpdates(patch, time.Now().UTC()))
	if status.Code(err) == codes.NotFound {
		return customerdom.ErrNotFound
	}
	return err
}

// profileUpdates maps a patch to Firestore field paths.
func profileUpdates(patch customerdom.Patch, now time.Time) []firestore.Update {
	updates := make([]firestore.Update, 0, 9)
	if patch.FirstName != nil {
		updates = append(updates, firestore.Update{Path: "firstName", Value: strings.TrimSpace(*patch.FirstName)})
	}
	if patch.LastName != nil {
		updates = append(updates, firestore.Update{Path: "lastName", Value: strings.TrimSpace(*patch.LastName)})
	}
	add := func(path string, v *string) {
		if v == nil {
			return
		}
		if s := strings.TrimSpace(*v); s != "" {
			updates = append(updates, firestore.Update{Path: path, Value: s})
			return
		}
		updates = append(updates, firestore.Update{Path: path, Value: nil})
	}
	a := patch.AddressFields
	add("phone", a.Phone)
	add("address", a.Address)
	add("city", a.City)
	add("state", a.State)
	add("postalCode", a.PostalCode)
	add("country", a.Country)
	return append(updates, firestore.Update{Path: "updatedAt", Value: now})
}

func profileFromData(docID string, raw map[string]any) customerdom.Profile {
	p := customerdom.Profile{
		ID:            strings.TrimSpace(asString(raw["id"])),
		Email:         asString(raw["email"]),
		FirstName:     asString(raw["firstName"]),
		LastName:      asString(raw["lastName"]),
		Phone:         asStringPtr(raw["phone"]),
		Address:       asStringPtr(raw["address"]),
		City:          asStringPtr(raw["city"]),
		State:         asStringPtr(raw["state"]),
		PostalCode:    asStringPtr(raw["postalCode"]),
		Country:       asStringPtr(raw["country"]),
		LoyaltyPoints: asInt(raw["loyaltyPoints"]),
	}
	// docId is the source of truth
	if docID != "" {
		p.ID = docID
	}
	if t, ok := asTime(raw["createdAt"]); ok {
		p.CreatedAt = t.UTC()
	}
	if t, ok := asTime(raw["updatedAt"]); ok {
		p.UpdatedAt = t.UTC()
	}
	if p.LoyaltyPoints < 0 {
		p.LoyaltyPoints = 0
	}
	return p
}
