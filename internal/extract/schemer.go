package extract

import (
	"log/slog"
	"slices"

	"github.com/zombor/receipt-reader/internal/geometry"
)

const (
	// zoneGrid splits the envelope width into columns; price columns are narrow
	zoneGrid = 13
	// areaDivider sets the central-area window to a quarter of the envelope height
	areaDivider = 4
	// waveExtendHeight is the percentage a central fragment's band grows vertically
	waveExtendHeight = 20
	// snakeDivider sets how many fragments the density limit tolerates outside a block
	snakeDivider = 15
)

// classifier holds the tag state of a single Classify call
type classifier struct {
	frags    []Fragment
	tags     []TagSet
	envelope geometry.Rect
	index    *geometry.Index
}

// Classify tags every fragment with a horizontal zone and a structural region
// and returns the frozen Layout. Fragment IDs are reset to their position in
// frags. After Classify every fragment carries exactly one zone tag and
// exactly one structural tag.
func Classify(frags []Fragment) *Layout {
	owned := slices.Clone(frags)
	for i := range owned {
		owned[i].ID = i
	}
	boxes := boxesOf(owned)
	c := &classifier{
		frags:    owned,
		tags:     make([]TagSet, len(owned)),
		envelope: geometry.Bounds(boxes),
		index:    geometry.NewIndex(boxes),
	}

	c.tagZones()
	order := sortedNatural(c.frags)
	target := c.bestCentralArea(order)
	c.tagCentral(order, target)
	c.tagMisses()

	n := len(order)
	endIntro := c.densitySnake(order, TagIntroduction)
	if endIntro != -1 {
		c.retagInterval(order, 0, endIntro, TagIntroduction)
	}
	reversed := slices.Clone(order)
	slices.Reverse(reversed)
	startConclusion := n
	if pos := c.densitySnake(reversed, TagConclusion); pos != -1 {
		startConclusion = n - pos - 1
		c.retagInterval(order, startConclusion, n-1, TagConclusion)
	}
	for i := endIntro + 1; i < startConclusion; i++ {
		id := order[i].ID
		if c.tags[id].Has(TagLeft) {
			c.tags[id] = c.tags[id].Retag(TagProducts)
		} else {
			c.tags[id] = c.tags[id].Retag(TagPrices)
		}
	}
	slog.Debug("Classified fragments", "fragments", n, "introduction_end", endIntro, "conclusion_start", startConclusion)

	return newLayout(c.frags, c.tags, c.envelope, c.index)
}

// zoneOf maps the horizontal center of box onto the grid: 0-4 left, up to 9
// center, right beyond
func zoneOf(box, envelope geometry.Rect) TagSet {
	width := envelope.Width()
	if width <= 0 {
		return TagCenter
	}
	position := (box.CenterX() - envelope.Left) * zoneGrid / width
	switch {
	case position >= 0 && position <= 4:
		return TagLeft
	case position <= 9:
		return TagCenter
	default:
		return TagRight
	}
}

func (c *classifier) tagZones() {
	for i, f := range c.frags {
		c.tags[i] |= zoneOf(f.Box, c.envelope)
	}
}

// bestCentralArea slides a window of a quarter of the envelope height down the
// receipt, one fragment top at a time, and returns the vertical center of the
// fragment opening the window richest in left/right text.
func (c *classifier) bestCentralArea(order []Fragment) float64 {
	if len(order) == 0 {
		return c.envelope.CenterY()
	}
	window := c.envelope.Height() / areaDivider
	best, chosen := -1.0, -1
	for i, f := range order {
		area := geometry.Rect{Left: c.envelope.Left, Top: f.Box.Top, Right: c.envelope.Right, Bottom: f.Box.Top + window}
		if area.Bottom > c.envelope.Bottom {
			break
		}
		var sides, total float64
		for _, id := range c.index.Contained(area) {
			a := c.frags[id].Box.Area()
			if c.tags[id].Any(TagLeft | TagRight) {
				sides += a
			}
			total += a
		}
		if total == 0 {
			total = 1
		}
		if ratio := sides / total; ratio >= best {
			best, chosen = ratio, i
		}
	}
	if chosen < 0 {
		return c.envelope.CenterY()
	}
	target := order[chosen].Box.CenterY()
	slog.Debug("Found central area", "target_height", target, "density", best)
	return target
}

// tagCentral splits centered text into introduction and conclusion around
// target and spreads each tag to the side text on the same line
func (c *classifier) tagCentral(order []Fragment, target float64) {
	for _, f := range order {
		if !c.tags[f.ID].Has(TagCenter) {
			continue
		}
		tag := TagConclusion
		if f.Box.CenterY() < target {
			tag = TagIntroduction
		}
		c.tags[f.ID] |= tag

		band := geometry.Extend(f.Box, -2*c.envelope.Width(), waveExtendHeight)
		for _, id := range c.index.Contained(band) {
			if !c.tags[id].Has(TagCenter) {
				c.tags[id] |= tag
			}
		}
	}
}

// tagMisses gives text outside introduction and conclusion a products or prices tag
func (c *classifier) tagMisses() {
	for i, t := range c.tags {
		if t.Any(TagIntroduction | TagConclusion) {
			continue
		}
		if t.Has(TagLeft) {
			c.tags[i] |= TagProducts
		} else {
			c.tags[i] |= TagPrices
		}
	}
}

// densitySnake walks order accumulating the share of area carrying tag. The
// smallest share above the density limit marks where the block ends; the
// returned index is pulled back to the closest fragment actually carrying
// tag. -1 means there is no block.
func (c *classifier) densitySnake(order []Fragment, tag TagSet) int {
	n := len(order)
	if n == 0 {
		return -1
	}

	var tagged, total float64
	positions := make(map[float64]int)
	for i, f := range order {
		a := f.Box.Area()
		if c.tags[f.ID].Has(tag) {
			tagged += a
		}
		total += a
		ratio := 0.0
		if total > 0 {
			ratio = tagged / total
		}
		positions[ratio] = i
	}
	if total == 0 {
		return -1
	}

	outside := max(n/snakeDivider, 1)
	limit := (total / float64(n)) * float64(n-outside) / total

	target := -1.0
	for ratio := range positions {
		if ratio > limit && (target < 0 || ratio < target) {
			target = ratio
		}
	}
	if target < 0 {
		return -1
	}

	position := positions[target]
	for i := position; i > 0; i-- {
		if c.tags[order[i].ID].Has(tag) {
			position = i
			break
		}
	}
	slog.Debug("Density snake", "tag", tag, "limit", limit, "density", target, "position", position)
	return position
}

// retagInterval replaces the structural tag of order[start..end] with tag
func (c *classifier) retagInterval(order []Fragment, start, end int, tag TagSet) {
	for i := start; i <= end; i++ {
		id := order[i].ID
		c.tags[id] = c.tags[id].Retag(tag)
	}
}
