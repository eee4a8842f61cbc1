// internal/adapters/out/local/snapshot_store.go
package local

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	cartdom "cosmetica/internal/domain/cart"
	wldom "cosmetica/internal/domain/wishlist"
)

// EnvelopeVersion is written into every snapshot.
const EnvelopeVersion = 1

const (
	SlotCart     = "cart"
	SlotWishlist = "wishlist"
	SlotAuth     = "auth"
)

var ErrUnsupportedVersion = errors.New("local: unsupported snapshot version")

// KV is the device namespace of the local key/value store
// (*localstore.Namespace in production).
type KV interface {
	Get(slot string) ([]byte, bool, error)
	Set(slot string, val []byte) error
	Delete(slot string) error
}

type envelope[E any] struct {
	Version int `json:"version"`
	Items   []E `json:"items"`
}

// SnapshotStore persists one snapshot type in one slot.
type SnapshotStore[S ~[]E, E any] struct {
	kv   KV
	slot string
}

var (
	_ cartdom.LocalRepository = (*SnapshotStore[cartdom.Snapshot, cartdom.Line])(nil)
	_ wldom.LocalRepository   = (*SnapshotStore[wldom.Snapshot, wldom.Entry])(nil)
)

func NewCartStore(kv KV) *SnapshotStore[cartdom.Snapshot, cartdom.Line] {
	return &SnapshotStore[cartdom.Snapshot, cartdom.Line]{kv: kv, slot: SlotCart}
}

func NewWishlistStore(kv KV) *SnapshotStore[wldom.Snapshot, wldom.Entry] {
	return &SnapshotStore[wldom.Snapshot, wldom.Entry]{kv: kv, slot: SlotWishlist}
}

// Load returns (nil, nil) when the slot is empty.
func (s *SnapshotStore[S, E]) Load() (S, error) {
	raw, ok, err := s.kv.Get(s.slot)
	if err != nil || !ok {
		return nil, err
	}
	items, err := decode[E](raw)
	if err != nil {
		return nil, fmt.Errorf("local: %s: %w", s.slot, err)
	}
	return S(items), nil
}

func (s *SnapshotStore[S, E]) Save(snap S) error {
	items := []E(snap)
	if items == nil {
		items = []E{}
	}
	raw, err := json.Marshal(envelope[E]{Version: EnvelopeVersion, Items: items})
	if err != nil {
		return err
	}
	return s.kv.Set(s.slot, raw)
}

// decode accepts the versioned envelope and the legacy bare array.
func decode[E any](raw []byte) ([]E, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0] == '[' {
		var items []E
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var env envelope[E]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Version > EnvelopeVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return env.Items, nil
}
