package findings

import (
	"cmp"
	"slices"
)

// Rank orders findings by intensity, highest first. Equal intensities keep
// their extraction order. The input slice is left untouched.
func Rank(in []Finding) List {
	out := make(List, len(in))
	copy(out, in)
	slices.SortStableFunc(out, func(a, b Finding) int {
		return cmp.Compare(b.Intensity, a.Intensity)
	})
	return out
}
