// internal/infra/localstore/pebble.go
package localstore

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/pebble"
)

var ErrEmptyKey = errors.New("localstore: empty key")

// Store is the device-local key/value store ("local storage" of every device),
// backed by one pebble database on the server's disk.
//
// Keys are namespaced per device: device/<deviceID>/<slot>.
type Store struct {
	db *pebble.DB
}

func Open(dir string) (*Store, error) {
	opts := &pebble.Options{
		// small values, many keys: keep memtables modest
		MemTableSize: 16 << 20,
	}
	db, err := pebble.Open(filepath.Clean(dir), opts)
	if err != nil {
		return nil, fmt.Errorf("localstore: pebble open: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Get returns (nil, false, nil) when key is absent. The returned slice is a copy.
func (s *Store) Get(key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	v, closer, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer closer.Close()
	return append([]byte(nil), v...), true, nil
}

// Set writes synchronously: local writes must survive a crash right after the
// request that made them.
func (s *Store) Set(key string, val []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.db.Set([]byte(key), val, pebble.Sync)
}

func (s *Store) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.db.Delete([]byte(key), pebble.Sync)
}

// Keys lists keys under prefix in order.
func (s *Store) Keys(prefix string) ([]string, error) {
	it, err := s.db.NewIter(prefixOptions(prefix))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []string
	for it.First(); it.Valid(); it.Next() {
		out = append(out, string(it.Key()))
	}
	return out, it.Error()
}

// DeletePrefix removes every key under prefix in one batch.
func (s *Store) DeletePrefix(prefix string) error {
	if prefix == "" {
		return ErrEmptyKey
	}
	keys, err := s.Keys(prefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	b := s.db.NewBatch()
	defer b.Close()
	for _, k := range keys {
		if err := b.Delete([]byte(k), nil); err != nil {
			return err
		}
	}
	return b.Commit(pebble.Sync)
}

// Device returns the namespace of one device.
func (s *Store) Device(deviceID string) *Namespace {
	return &Namespace{store: s, prefix: "device/" + strings.TrimSpace(deviceID) + "/"}
}

// Namespace is one device's slice of the store.
type Namespace struct {
	store  *Store
	prefix string
}

func (n *Namespace) Get(slot string) ([]byte, bool, error) { return n.store.Get(n.prefix + slot) }
func (n *Namespace) Set(slot string, val []byte) error     { return n.store.Set(n.prefix+slot, val) }
func (n *Namespace) Delete(slot string) error              { return n.store.Delete(n.prefix + slot) }

// Clear forgets everything stored for the device.
func (n *Namespace) Clear() error { return n.store.DeletePrefix(n.prefix) }

func prefixOptions(prefix string) *pebble.IterOptions {
	if prefix == "" {
		return nil
	}
	return &pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: upperBound([]byte(prefix)),
	}
}

// upperBound is the smallest key greater than every key with prefix p.
func upperBound(p []byte) []byte {
	end := append([]byte(nil), p...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
