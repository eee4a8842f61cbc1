// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"math"
	"strings"
)

var (
	ErrInvalidCart = errors.New("cart: invalid")
	ErrInvalidLine = errors.New("cart: invalid line")
)

// Line represents one line item in a cart.
// A cart holds at most one line per ProductID.
type Line struct {
	ProductID string  `json:"productId" firestore:"productId"`
	Name      string  `json:"name" firestore:"name"`
	UnitPrice float64 `json:"unitPrice" firestore:"unitPrice"`
	// Image is an image reference (object path / gs:// / URL), resolved at the view layer.
	Image    string `json:"image" firestore:"image"`
	Quantity int    `json:"quantity" firestore:"quantity"`
}

// Snapshot is the full list of lines; it is the unit of read/write for both stores.
type Snapshot []Line

// Cart is the in-memory cart.
//
// NOTE:
// - line order is insertion order (first add appends), so the view stays stable
// - Cart is not safe for concurrent use; the owning container serializes access
type Cart struct {
	lines []Line
}

// New builds a cart from a snapshot. Invalid lines are dropped and duplicate
// product ids are merged (quantities summed), keeping first-seen order.
func New(s Snapshot) *Cart {
	return &Cart{lines: normalizeAndMerge(s)}
}

// Add sums quantity into an existing line for ProductID, or appends a new line.
// Name/price/image of an existing line are refreshed from the incoming item.
func (c *Cart) Add(l Line) error {
	if c == nil {
		return ErrInvalidCart
	}
	l = normalizeLine(l)
	if err := validateLine(l); err != nil {
		return err
	}

	idx := c.index(l.ProductID)
	if idx < 0 {
		c.lines = append(c.lines, l)
		return nil
	}

	cur := c.lines[idx]
	cur.Quantity += l.Quantity
	if l.Name != "" {
		cur.Name = l.Name
	}
	if l.Image != "" {
		cur.Image = l.Image
	}
	cur.UnitPrice = l.UnitPrice
	c.lines[idx] = cur
	return nil
}

// SetQuantity sets quantity for productID.
// If qty <= 0, it removes the line (same as Remove).
// Returns false when there is no such line.
func (c *Cart) SetQuantity(productID string, qty int) bool {
	if c == nil {
		return false
	}
	idx := c.index(strings.TrimSpace(productID))
	if idx < 0 {
		return false
	}
	if qty <= 0 {
		c.lines = removeIndex(c.lines, idx)
		return true
	}
	c.lines[idx].Quantity = qty
	return true
}

// Remove removes the line for productID. Returns false when absent.
func (c *Cart) Remove(productID string) bool {
	return c.SetQuantity(productID, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	if c == nil {
		return
	}
	c.lines = nil
}

// Deduct takes submitted quantities out of the cart. A line whose quantity
// reaches zero is removed; lines missing from submitted are left alone.
func (c *Cart) Deduct(submitted Snapshot) {
	if c == nil {
		return
	}
	for _, l := range submitted {
		idx := c.index(strings.TrimSpace(l.ProductID))
		if idx < 0 {
			continue
		}
		if left := c.lines[idx].Quantity - l.Quantity; left > 0 {
			c.lines[idx].Quantity = left
		} else {
			c.lines = removeIndex(c.lines, idx)
		}
	}
}

// Contains reports whether a line exists for productID.
func (c *Cart) Contains(productID string) bool {
	if c == nil {
		return false
	}
	return c.index(strings.TrimSpace(productID)) >= 0
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	if c == nil {
		return 0
	}
	return len(c.lines)
}

// TotalItems is the sum of quantities.
func (c *Cart) TotalItems() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal is the sum of unitPrice * quantity, rounded to cents.
func (c *Cart) Subtotal() float64 {
	if c == nil {
		return 0
	}
	return Subtotal(c.lines)
}

// Snapshot returns a copy of the current lines.
func (c *Cart) Snapshot() Snapshot {
	if c == nil || len(c.lines) == 0 {
		return Snapshot{}
	}
	out := make(Snapshot, len(c.lines))
	copy(out, c.lines)
	return out
}

// Subtotal computes Σ unitPrice × quantity over lines.
func Subtotal(lines []Line) float64 {
	sum := 0.0
	for _, l := range lines {
		sum += l.UnitPrice * float64(l.Quantity)
	}
	return math.Round(sum*100) / 100
}

// ----------------------------
// Helpers
// ----------------------------

func (c *Cart) index(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func normalizeLine(l Line) Line {
	l.ProductID = strings.TrimSpace(l.ProductID)
	l.Name = strings.TrimSpace(l.Name)
	l.Image = strings.TrimSpace(l.Image)
	return l
}

func validateLine(l Line) error {
	if l.ProductID == "" || l.Quantity <= 0 {
		return ErrInvalidLine
	}
	if l.UnitPrice < 0 || math.IsNaN(l.UnitPrice) || math.IsInf(l.UnitPrice, 0) {
		return ErrInvalidLine
	}
	return nil
}

func removeIndex(lines []Line, idx int) []Line {
	if idx < 0 || idx >= len(lines) {
		return lines
	}
	// preserve order
	return append(lines[:idx], lines[idx+1:]...)
}

// normalizeAndMerge drops invalid lines and merges duplicate product ids.
// First-seen order is kept; the last seen name/price/image wins.
func normalizeAndMerge(src []Line) []Line {
	if len(src) == 0 {
		return nil
	}
	out := make([]Line, 0, len(src))
	pos := make(map[string]int, len(src))

	for _, l := range src {
		l = normalizeLine(l)
		if validateLine(l) != nil {
			continue
		}
		if i, ok := pos[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			out[i].UnitPrice = l.UnitPrice
			if l.Name != "" {
				out[i].Name = l.Name
			}
			if l.Image != "" {
				out[i].Image = l.Image
			}
			continue
		}
		pos[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}
