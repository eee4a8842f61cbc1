package customer

import "context"

// Repository is the remote profile store.
// Firestore: collection "customers", docId = uid.
type Repository interface {
	// GetByID returns ErrNotFound when no row exists for id.
	GetByID(ctx context.Context, id string) (*Profile, error)

	// Upsert inserts or replaces the row keyed by p.ID.
	Upsert(ctx context.Context, p Profile) error

	// Update writes only the fields set in patch (plus updatedAt) to an
	// existing row; server-owned fields such as loyaltyPoints are untouched.
	// Returns ErrNotFound when no row exists for id.
	Update(ctx context.Context, id string, patch Patch) error
}
