// internal/domain/cart/repository_port.go
package cart

import "context"

// Repository is the remote persistence port for cart snapshots.
//
// Storage (Firestore):
// - collection: carts
// - docId: uid
// - fields: items(array of Line), updatedAt, expiresAt
//
// TTL:
// - Configure Firestore TTL on the "expiresAt" field; it is refreshed on every Upsert.
type Repository interface {
	// Get returns the stored snapshot for the user.
	// Not-found policy: returns (nil, nil) and the caller treats nil as "absent".
	Get(ctx context.Context, userID string) (Snapshot, error)

	// Upsert replaces the whole snapshot (no field-level patching).
	Upsert(ctx context.Context, userID string, s Snapshot) error

	// Delete removes the stored snapshot.
	Delete(ctx context.Context, userID string) error
}

// LocalRepository is the device-local snapshot store ("local storage").
// Reads and writes are cheap and synchronous.
type LocalRepository interface {
	// Load returns (nil, nil) when nothing is stored yet.
	Load() (Snapshot, error)
	Save(s Snapshot) error
}
