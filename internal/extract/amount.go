package extract

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-reader/internal/fuzzy"
	"github.com/zombor/receipt-reader/internal/geometry"
)

const (
	// labelMaxDistance is the keyword tolerance of a normal label search
	labelMaxDistance = 2
	// extendedMaxDistance is the widest keyword tolerance of an extended search
	extendedMaxDistance = 4
	// labelMatchMultiplier turns a keyword distance into a match score
	labelMatchMultiplier = 10
	// valueStripExtend is how much of the label height the value strip adds above and below
	valueStripExtend = 0.7
	// priceColumnExtend is the percentage the anchor grows horizontally to form the price column
	priceColumnExtend = 50
	// evidenceMaxDistance is the edit distance tolerated between two money strings
	evidenceMaxDistance = 2
	// cashMaxGap is the largest gap, in anchor heights, between an anchor and its cash line
	cashMaxGap = 3
)

var two = decimal.NewFromInt(2)

// columnEntry is a fragment of the price column; distance is positive above the anchor
type columnEntry struct {
	fragment Fragment
	distance float64
}

// amountResolver finds the total of one classified receipt
type amountResolver struct {
	layout *Layout
	scheme Scheme
	opts   Options
}

// resolve returns the evidence gathered around the best total label. Evidence
// with an unset Amount and no hits means nothing was found.
func (r *amountResolver) resolve() Evidence {
	if r.opts.TotalSearch == TotalSkip {
		return Evidence{}
	}

	distances := []int{labelMaxDistance}
	if r.opts.TotalSearch == TotalExtended {
		for d := labelMaxDistance + 1; d <= extendedMaxDistance; d++ {
			distances = append(distances, d)
		}
	}

	var firstLabels []Scored[Fragment]
	for _, maxDistance := range distances {
		labels := r.findLabels(maxDistance)
		if len(labels) == 0 {
			continue
		}
		if firstLabels == nil {
			firstLabels = labels
		}
		if r.opts.TotalSearch == TotalNormal {
			labels = labels[:1]
		}
		for _, label := range labels {
			value, amount, ok := r.decodeLabel(label.Value)
			if !ok {
				continue
			}
			slog.Debug("Decoded amount", "label", label.Value.Value, "value", value.Value, "amount", amount.StringFixed(2))
			return r.gather(value, decimal.NewNullDecimal(amount))
		}
	}

	if firstLabels != nil {
		anchor := r.dummyAnchor(firstLabels[0].Value)
		slog.Debug("No amount decoded, using dummy anchor", "label", firstLabels[0].Value.Value)
		return r.gather(anchor, decimal.NullDecimal{})
	}

	if r.opts.PriceEditing == PriceEditingAllowLoose {
		if f, amount, ok := r.bestPrice(); ok {
			slog.Debug("No label, using best price", "value", f.Value, "amount", amount.StringFixed(2))
			return r.gather(f, decimal.NewNullDecimal(amount))
		}
	}
	return Evidence{}
}

// findLabels returns the fragments resembling the total keyword, best first
func (r *amountResolver) findLabels(maxDistance int) []Scored[Fragment] {
	var labels []Scored[Fragment]
	for _, f := range r.layout.Fragments() {
		d := fuzzy.FindSubstring(f.Value, r.scheme.TotalKeyword)
		if d < 0 || d > maxDistance {
			continue
		}
		match := Scored[Fragment]{Value: f, Score: float64((maxDistance - d + 1) * labelMatchMultiplier)}
		match.Score = float64(AmountBlockScore(r.layout, f)) + SourceAmountScore(r.layout, match)
		labels = append(labels, match)
	}
	sortScored(labels, compareNatural)
	return labels
}

// decodeLabel reads the amount printed on the label's line. A value inside the
// label itself comes first, then the other fragments of the line in order of
// alignment with the label.
func (r *amountResolver) decodeLabel(label Fragment) (Fragment, decimal.Decimal, bool) {
	if value, amount, ok := r.labelValue(label); ok {
		return value, amount, true
	}

	grow := label.Box.Height() * valueStripExtend
	strip := geometry.Rect{
		Left:   label.Box.Left,
		Top:    label.Box.Top - grow,
		Right:  r.layout.Envelope().Right,
		Bottom: label.Box.Bottom + grow,
	}

	var candidates []Scored[Fragment]
	for _, f := range r.layout.Within(strip) {
		if f.ID == label.ID {
			continue
		}
		c := Scored[Fragment]{Value: f, Score: DistFromSourceScore(label, f)}
		c.Score = AmountScore(r.layout, c)
		candidates = append(candidates, c)
	}
	sortScored(candidates, compareNatural)

	for _, c := range candidates {
		if amount, ok := r.confidentAmount(c.Value); ok {
			return c.Value, amount, true
		}
	}
	return Fragment{}, decimal.Decimal{}, false
}

// labelValue decodes the tokens following the keyword when the OCR merged the
// label and its value into one fragment. The whole tail is tried first, then
// its tokens from the right.
func (r *amountResolver) labelValue(label Fragment) (Fragment, decimal.Decimal, bool) {
	tokens := strings.Fields(label.Value)
	keyword := strings.ToUpper(r.scheme.TotalKeyword)
	at, best := -1, 0
	for i, t := range tokens {
		if d := fuzzy.Levenshtein(strings.ToUpper(t), keyword); at < 0 || d < best {
			at, best = i, d
		}
	}
	if at < 0 || at == len(tokens)-1 {
		return Fragment{}, decimal.Decimal{}, false
	}

	tail := tokens[at+1:]
	tries := []string{strings.Join(tail, " ")}
	if len(tail) > 1 {
		for i := len(tail) - 1; i >= 0; i-- {
			tries = append(tries, tail[i])
		}
	}
	for _, text := range tries {
		value := subFragment(label, text)
		if amount, ok := r.confidentAmount(value); ok {
			return value, amount, true
		}
	}
	return Fragment{}, decimal.Decimal{}, false
}

// subFragment narrows f to the part of its box holding text, assuming glyphs
// of even width. The box is kept whole when text is not found verbatim.
func subFragment(f Fragment, text string) Fragment {
	sub := Fragment{ID: f.ID, Value: text, Box: f.Box}
	at := strings.LastIndex(f.Value, text)
	n := utf8.RuneCountInString(f.Value)
	if at < 0 || n == 0 {
		return sub
	}
	w := f.CharWidth()
	sub.Box.Left = f.Box.Left + w*float64(utf8.RuneCountInString(f.Value[:at]))
	sub.Box.Right = sub.Box.Left + w*float64(utf8.RuneCountInString(text))
	return sub
}

// dummyAnchor stands in for an unreadable amount: the right half of the
// receipt on the label's line
func (r *amountResolver) dummyAnchor(label Fragment) Fragment {
	env := r.layout.Envelope()
	return Fragment{
		ID:  -1,
		Box: geometry.Rect{Left: env.CenterX(), Top: label.Box.Top, Right: env.Right, Bottom: label.Box.Bottom},
	}
}

// bestPrice decodes the best placed confident price of the receipt
func (r *amountResolver) bestPrice() (Fragment, decimal.Decimal, bool) {
	var prices []Scored[Fragment]
	for _, f := range r.layout.Tagged(TagPrices) {
		prices = append(prices, Scored[Fragment]{Value: f, Score: float64(AmountBlockScore(r.layout, f))})
	}
	sortScored(prices, compareNatural)
	for _, p := range prices {
		if amount, ok := r.confidentAmount(p.Value); ok {
			return p.Value, amount, true
		}
	}
	return Fragment{}, decimal.Decimal{}, false
}

// confidentAmount decodes f when it reads as a price and not as a date
func (r *amountResolver) confidentAmount(f Fragment) (decimal.Decimal, bool) {
	if !fuzzy.IsPossibleNumber(f.Value, r.scheme.DecimalComma) {
		return decimal.Decimal{}, false
	}
	if _, isDate := fuzzy.ParseDate(f.Value, r.scheme.DayFirst); isDate {
		return decimal.Decimal{}, false
	}
	return fuzzy.ParseAmount(f.Value, r.scheme.DecimalComma)
}

// priceColumn returns the fragments in the anchor's column, top first
func (r *amountResolver) priceColumn(anchor Fragment) []columnEntry {
	var pool []Fragment
	switch r.opts.ProductsSearch {
	case ProductsSkip:
		return nil
	case ProductsNormal:
		pool = r.layout.Tagged(TagPrices | TagConclusion)
	default:
		pool = r.layout.Fragments()
	}

	column := geometry.Extend(anchor.Box, priceColumnExtend, 0)
	var entries []columnEntry
	for _, f := range pool {
		if f.ID == anchor.ID {
			continue
		}
		if column.Left < f.Box.Left && column.Right > f.Box.Right {
			entries = append(entries, columnEntry{fragment: f, distance: anchor.Box.Top - f.Box.Top})
		}
	}
	slices.SortStableFunc(entries, func(a, b columnEntry) int {
		if c := cmp.Compare(b.distance, a.distance); c != 0 {
			return c
		}
		return compareNatural(a.fragment, b.fragment)
	})
	return entries
}

// gather collects the evidence of the price column around anchor
func (r *amountResolver) gather(anchor Fragment, amount decimal.NullDecimal) Evidence {
	e := Evidence{Amount: amount}
	entries := r.priceColumn(anchor)

	var above, below []columnEntry
	for _, en := range entries {
		switch {
		case en.distance > 0:
			above = append(above, en)
		case en.distance < 0:
			below = append(below, en)
		}
	}
	r.analyzePrices(&e, above)
	r.analyzeCash(&e, anchor, below)
	slog.Debug("Gathered amount evidence", "hits", e.Hits, "addends", e.Addends)
	return e
}

// analyzePrices sums the run of prices directly above the anchor. The last
// addend may be a subtotal.
func (r *amountResolver) analyzePrices(e *Evidence, above []columnEntry) {
	var run []decimal.Decimal
	for _, en := range above {
		v, ok := r.confidentAmount(en.fragment)
		if !ok {
			run = nil
			continue
		}
		run = append(run, v)
	}
	if len(run) == 0 {
		return
	}

	sum := decimal.Sum(run[0], run[1:]...)
	half := sum.Div(two).Round(2)
	e.Addends = len(run)
	var subtotal decimal.NullDecimal
	if len(run) > 1 {
		subtotal = decimal.NewNullDecimal(run[len(run)-1])
	}

	if subtotal.Valid && (!e.Amount.Valid || subtotal.Decimal.Equal(e.Amount.Decimal)) {
		e.flagSubtotal(subtotal.Decimal)
	}

	var target decimal.Decimal
	switch {
	case e.Amount.Valid:
		target = e.Amount.Decimal
	case subtotal.Valid:
		target = subtotal.Decimal
	default:
		e.flagPriceList(sum)
		return
	}

	switch {
	case target.Equal(sum):
		e.flagPriceList(sum)
	case target.Equal(half):
		e.flagPriceList(half)
	case near(sum, target):
		e.flagPriceList(sum)
	case near(half, target):
		e.flagPriceList(half)
	}
}

// analyzeCash reads cash and change below the anchor and checks them against the amount
func (r *amountResolver) analyzeCash(e *Evidence, anchor Fragment, below []columnEntry) {
	var cash, change decimal.NullDecimal
	var cashFragment Fragment
	i := 0
	for ; i < len(below) && !cash.Valid; i++ {
		f := below[i].fragment
		if !adjacentBelow(anchor, f) {
			continue
		}
		if v, ok := r.confidentAmount(f); ok {
			cash = decimal.NewNullDecimal(v)
			cashFragment = f
		}
	}
	if !cash.Valid {
		return
	}
	for ; i < len(below) && !change.Valid; i++ {
		f := below[i].fragment
		if !adjacentBelow(cashFragment, f) {
			continue
		}
		if v, ok := r.confidentAmount(f); ok {
			change = decimal.NewNullDecimal(v)
		}
	}

	if !e.Amount.Valid {
		e.flagCash(cash.Decimal)
		if change.Valid {
			e.flagChange(change.Decimal)
		}
		return
	}

	amount := e.Amount.Decimal
	if cash.Decimal.Equal(amount) || near(cash.Decimal, amount) {
		e.flagCash(cash.Decimal)
	}
	if change.Valid {
		paid := cash.Decimal.Sub(change.Decimal)
		if paid.Equal(amount) || near(paid, amount) {
			e.flagCash(cash.Decimal)
			e.flagChange(change.Decimal)
		}
	}
}

// adjacentBelow reports whether f starts below the middle of source and
// close enough to belong to the next lines
func adjacentBelow(source, f Fragment) bool {
	h := source.Box.Height()
	return f.Box.Top >= source.Box.CenterY() && f.Box.Top-source.Box.Bottom <= cashMaxGap*h
}

// near reports whether two amounts differ by at most a couple of printed characters
func near(a, b decimal.Decimal) bool {
	d := fuzzy.FindSubstring(a.StringFixed(2), b.StringFixed(2))
	return d >= 0 && d <= evidenceMaxDistance
}
