package product

import (
	"sort"
	"strings"
)

// Matches reports whether p passes the category/brand part of f
// (case-insensitive).
func (f Filter) Matches(p Product) bool {
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(c, p.Category) {
		return false
	}
	if b := strings.TrimSpace(f.Brand); b != "" && !strings.EqualFold(b, p.Brand) {
		return false
	}
	return true
}

// Select filters, sorts and limits items. The input slice is not modified.
func Select(items []Product, f Filter) []Product {
	out := make([]Product, 0, len(items))
	for _, p := range items {
		if f.Matches(p) {
			out = append(out, p)
		}
	}

	switch f.Sort {
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
