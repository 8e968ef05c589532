package extract

import (
	"slices"

	"github.com/zombor/receipt-reader/internal/geometry"
)

// Layout is the frozen outcome of classifying one fragment set. It carries
// everything the score functions and resolvers need about the receipt: the
// text envelope, the region covered by each structural tag, the average glyph
// size and the tags of every fragment.
type Layout struct {
	fragments  []Fragment
	tags       []TagSet
	envelope   geometry.Rect
	regions    map[TagSet]geometry.Rect
	charHeight float64
	charWidth  float64
	index      *geometry.Index
}

func newLayout(frags []Fragment, tags []TagSet, envelope geometry.Rect, index *geometry.Index) *Layout {
	l := &Layout{
		fragments: frags,
		tags:      tags,
		envelope:  envelope,
		regions:   make(map[TagSet]geometry.Rect),
		index:     index,
	}

	var heights, widths float64
	var counted int
	for i, f := range frags {
		if f.Value != "" {
			heights += f.CharHeight()
			widths += f.CharWidth()
			counted++
		}
		s := tags[i].Structure()
		if s == 0 {
			continue
		}
		if r, ok := l.regions[s]; ok {
			l.regions[s] = r.Union(f.Box)
		} else {
			l.regions[s] = f.Box
		}
	}
	if counted > 0 {
		l.charHeight = heights / float64(counted)
		l.charWidth = widths / float64(counted)
	}
	return l
}

// Envelope returns the bounding box of all text
func (l *Layout) Envelope() geometry.Rect {
	return l.envelope
}

// Len returns the number of fragments
func (l *Layout) Len() int {
	return len(l.fragments)
}

// Fragment returns the fragment with the given id
func (l *Layout) Fragment(id int) Fragment {
	return l.fragments[id]
}

// Fragments returns all fragments in natural order
func (l *Layout) Fragments() []Fragment {
	return sortedNatural(l.fragments)
}

// Tags returns the tags of fragment id
func (l *Layout) Tags(id int) TagSet {
	return l.tags[id]
}

// Tagged returns, in natural order, the fragments carrying any of tags
func (l *Layout) Tagged(tags TagSet) []Fragment {
	var out []Fragment
	for i, f := range l.fragments {
		if l.tags[i].Any(tags) {
			out = append(out, f)
		}
	}
	slices.SortStableFunc(out, compareNatural)
	return out
}

// Region returns the union of the boxes tagged with the structural tag
func (l *Layout) Region(tag TagSet) (geometry.Rect, bool) {
	r, ok := l.regions[tag]
	return r, ok
}

// AverageCharHeight returns the mean glyph height over non-empty fragments
func (l *Layout) AverageCharHeight() float64 {
	return l.charHeight
}

// AverageCharWidth returns the mean glyph width over non-empty fragments
func (l *Layout) AverageCharWidth() float64 {
	return l.charWidth
}

// Within returns, in natural order, the fragments lying entirely inside area
func (l *Layout) Within(area geometry.Rect) []Fragment {
	ids := l.index.Contained(area)
	out := make([]Fragment, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.fragments[id])
	}
	slices.SortStableFunc(out, compareNatural)
	return out
}
