package extract

import (
	"cmp"
	"math"
	"slices"

	"github.com/zombor/receipt-reader/internal/geometry"
)

// gridLength is the number of vertical buckets a region is split into
const gridLength = 10

const (
	centerDiffMultiplier = 50
	charHeightMultiplier = 50
	charWidthMultiplier  = 80
	sourceDiffMultiplier = 50
)

// blockTable maps a bucket (0 = top of the region, 9 = bottom) to a weight
type blockTable [gridLength]int

var (
	amountIntroduction = blockTable{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	amountProducts     = blockTable{0, 0, 0, 5, 5, 10, 15, 20, 15, 10}
	amountConclusion   = blockTable{5, 5, 0, 0, 0, 0, 0, 0, 0, 0}

	dateIntroduction = blockTable{0, 0, 0, 0, 0, 5, 5, 10, 15, 15}
	dateProducts     = blockTable{10, 5, 0, 0, 0, 0, 0, 5, 15, 15}
	dateConclusion   = blockTable{15, 10, 10, 5, 5, 10, 5, 5, 10, 10}
)

// Scored pairs a value with a score; higher is better
type Scored[T any] struct {
	Value T
	Score float64
}

// sortScored orders items by descending score, breaking ties with tie
func sortScored[T any](items []Scored[T], tie func(a, b T) int) {
	slices.SortStableFunc(items, func(a, b Scored[T]) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return tie(a.Value, b.Value)
	})
}

// blockPosition returns the bucket of the vertical center of box inside region
func blockPosition(box, region geometry.Rect) int {
	h := region.Height()
	if h <= 0 {
		return 0
	}
	p := int((box.CenterY() - region.Top) / h * gridLength)
	return min(max(p, 0), gridLength-1)
}

func (l *Layout) blockScore(f Fragment, intro, products, prices, conclusion blockTable) int {
	tags := l.Tags(f.ID)
	var table blockTable
	var region TagSet
	switch {
	case tags.Has(TagIntroduction):
		table, region = intro, TagIntroduction
	case tags.Has(TagProducts):
		table, region = products, TagProducts
	case tags.Has(TagPrices):
		table, region = prices, TagPrices
	case tags.Has(TagConclusion):
		table, region = conclusion, TagConclusion
	default:
		return -1
	}
	r, _ := l.Region(region)
	return table[blockPosition(f.Box, r)]
}

// AmountBlockScore rates where f sits in its region as a place for a total.
// Untagged fragments score -1.
func AmountBlockScore(l *Layout, f Fragment) int {
	return l.blockScore(f, amountIntroduction, amountProducts, amountProducts, amountConclusion)
}

// DateBlockScore rates where f sits in its region as a place for a date
func DateBlockScore(l *Layout, f Fragment) int {
	return l.blockScore(f, dateIntroduction, dateProducts, dateProducts, dateConclusion)
}

// DistFromSourceScore rates how well target lines up with source: vertical
// centers close relative to the source height, and similar box heights
func DistFromSourceScore(source, target Fragment) float64 {
	hs := source.Box.Height()
	if hs <= 0 {
		return 0
	}
	diffCenter := math.Abs(source.Box.CenterY() - target.Box.CenterY())
	centerScore := (hs - diffCenter) / hs * centerDiffMultiplier
	heightDiff := math.Abs(hs-target.Box.Height()) / hs
	return centerScore + (1-heightDiff)*sourceDiffMultiplier
}

// SourceAmountScore adjusts the match score of a label by how far its glyph
// size is from the receipt average; labels in unusual fonts lose points
func SourceAmountScore(l *Layout, label Scored[Fragment]) float64 {
	score := label.Score
	if avg := l.AverageCharHeight(); avg > 0 {
		score -= math.Abs(label.Value.CharHeight()-avg) / avg * charHeightMultiplier
	}
	if avg := l.AverageCharWidth(); avg > 0 {
		score -= math.Abs(label.Value.CharWidth()-avg) / avg * charWidthMultiplier
	}
	return score
}

// AmountScore is the ranking of a value candidate: its alignment score plus
// its position in the receipt
func AmountScore(l *Layout, candidate Scored[Fragment]) float64 {
	return candidate.Score + float64(AmountBlockScore(l, candidate.Value))
}
