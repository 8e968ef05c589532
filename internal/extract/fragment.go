package extract

import (
	"cmp"
	"slices"
	"unicode/utf8"

	"github.com/zombor/receipt-reader/internal/geometry"
)

// Fragment is one OCR text unit. ID is its position in the analysed set.
type Fragment struct {
	ID    int           `json:"id"`
	Value string        `json:"value"`
	Box   geometry.Rect `json:"box"`
}

// CharHeight returns the average glyph height, i.e. the box height
func (f Fragment) CharHeight() float64 {
	return f.Box.Height()
}

// CharWidth returns the average glyph width, 0 for an empty value
func (f Fragment) CharWidth() float64 {
	n := utf8.RuneCountInString(f.Value)
	if n == 0 {
		return 0
	}
	return f.Box.Width() / float64(n)
}

// compareNatural orders fragments top to bottom, then left to right
func compareNatural(a, b Fragment) int {
	if c := cmp.Compare(a.Box.Top, b.Box.Top); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Box.Left, b.Box.Left); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// sortedNatural returns a copy of frags in natural order
func sortedNatural(frags []Fragment) []Fragment {
	out := slices.Clone(frags)
	slices.SortStableFunc(out, compareNatural)
	return out
}

func boxesOf(frags []Fragment) []geometry.Rect {
	boxes := make([]geometry.Rect, len(frags))
	for i, f := range frags {
		boxes[i] = f.Box
	}
	return boxes
}
