// internal/domain/wishlist/entity.go
package wishlist

import (
	"errors"
	"math"
	"strings"
)

var (
	ErrInvalidEntry = errors.New("wishlist: invalid entry")
)

// Entry is one liked product. The set is keyed by ProductID.
type Entry struct {
	ProductID string  `json:"productId" firestore:"productId"`
	Name      string  `json:"name" firestore:"name"`
	Price     float64 `json:"price" firestore:"price"`
	Image     string  `json:"image" firestore:"image"`
}

// Snapshot is the full set of entries in display (insertion) order.
type Snapshot []Entry

// Set is the in-memory wishlist. Not safe for concurrent use.
type Set struct {
	entries []Entry
}

// New builds a set from a snapshot; invalid entries are dropped and the first
// occurrence of a product id wins.
func New(s Snapshot) *Set {
	return &Set{entries: dedupe(s)}
}

// Add inserts e. Adding an id that is already present is a no-op and returns false.
func (s *Set) Add(e Entry) (bool, error) {
	e = normalize(e)
	if err := validate(e); err != nil {
		return false, err
	}
	if s.index(e.ProductID) >= 0 {
		return false, nil
	}
	s.entries = append(s.entries, e)
	return true, nil
}

// Remove deletes the entry for productID. Returns false when absent.
func (s *Set) Remove(productID string) bool {
	idx := s.index(strings.TrimSpace(productID))
	if idx < 0 {
		return false
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	return true
}

// Clear empties the set.
func (s *Set) Clear() { s.entries = nil }

// Has reports membership.
func (s *Set) Has(productID string) bool {
	return s.index(strings.TrimSpace(productID)) >= 0
}

func (s *Set) Len() int { return len(s.entries) }

// Snapshot returns a copy of the entries.
func (s *Set) Snapshot() Snapshot {
	if len(s.entries) == 0 {
		return Snapshot{}
	}
	out := make(Snapshot, len(s.entries))
	copy(out, s.entries)
	return out
}

// Union merges two snapshots; primary wins on conflict and secondary-only entries
// are appended.
func Union(primary, secondary Snapshot) Snapshot {
	out := dedupe(primary)
	seen := make(map[string]struct{}, len(out))
	for _, e := range out {
		seen[e.ProductID] = struct{}{}
	}
	for _, e := range dedupe(secondary) {
		if _, ok := seen[e.ProductID]; ok {
			continue
		}
		out = append(out, e)
	}
	if out == nil {
		return Snapshot{}
	}
	return out
}

func (s *Set) index(productID string) int {
	for i := range s.entries {
		if s.entries[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func normalize(e Entry) Entry {
	e.ProductID = strings.TrimSpace(e.ProductID)
	e.Name = strings.TrimSpace(e.Name)
	e.Image = strings.TrimSpace(e.Image)
	return e
}

func validate(e Entry) error {
	if e.ProductID == "" {
		return ErrInvalidEntry
	}
	if e.Price < 0 || math.IsNaN(e.Price) || math.IsInf(e.Price, 0) {
		return ErrInvalidEntry
	}
	return nil
}

func dedupe(src []Entry) []Entry {
	if len(src) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(src))
	seen := make(map[string]struct{}, len(src))
	for _, e := range src {
		e = normalize(e)
		if validate(e) != nil {
			continue
		}
		if _, ok := seen[e.ProductID]; ok {
			continue
		}
		seen[e.ProductID] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Equal reports whether a and b hold the same entries in the same order.
func Equal(a, b Snapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SingleRemoval reports whether next is prev with exactly one entry removed,
// and returns that entry's product id.
func SingleRemoval(prev, next Snapshot) (string, bool) {
	if len(prev) != len(next)+1 {
		return "", false
	}
	removed := ""
	j := 0
	for i := range prev {
		if j < len(next) && prev[i] == next[j] {
			j++
			continue
		}
		if removed != "" {
			return "", false
		}
		removed = prev[i].ProductID
	}
	return removed, removed != "" && j == len(next)
}
