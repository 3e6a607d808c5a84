package blank

// ResolveOverlaps keeps a candidate only if it does not intersect any
// candidate kept before it. Input must be sorted by ascending Start; the
// result preserves that order and favours whichever span appears first.
func ResolveOverlaps(candidates []Candidate) []Candidate {
	result := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		overlapping := false
		for _, kept := range result {
			if c.Overlaps(kept) {
				overlapping = true
				break
			}
		}
		if !overlapping {
			result = append(result, c)
		}
	}
	return result
}
