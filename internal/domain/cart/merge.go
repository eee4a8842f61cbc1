package cart

// Union merges two snapshots keyed by ProductID.
// Lines from primary win on conflict; lines only present in secondary are appended
// after primary's lines in their original order.
func Union(primary, secondary Snapshot) Snapshot {
	p := normalizeAndMerge(primary)
	seen := make(map[string]struct{}, len(p))
	for _, l := range p {
		seen[l.ProductID] = struct{}{}
	}

	out := make(Snapshot, 0, len(p)+len(secondary))
	out = append(out, p...)
	for _, l := range normalizeAndMerge(secondary) {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Equal reports whether two snapshots hold the same lines in the same order.
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
