package wishlist

import "context"

// Repository is the remote persistence port.
//
// Storage (Firestore):
// - customers/{customerId}/wishlist/{productId}
// - fields: productId, name, price, image, addedAt
type Repository interface {
	// Get returns the stored entries and whether anything is stored.
	Get(ctx context.Context, customerID string) (Snapshot, bool, error)

	// Replace writes the whole snapshot: entries not in s are deleted.
	Replace(ctx context.Context, customerID string, s Snapshot) error

	// DeleteEntry removes one entry directly (server-side list operations).
	DeleteEntry(ctx context.Context, customerID, productID string) error
}

// LocalRepository is the device-local snapshot store.
type LocalRepository interface {
	// Load returns (nil, nil) when nothing is stored yet.
	Load() (Snapshot, error)
	Save(s Snapshot) error
}
