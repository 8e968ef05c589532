package extract

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Scheme describes a national receipt layout: the word printed next to the
// total, how dates and decimals are written, and how evidence is combined
// into the final amount.
type Scheme struct {
	Code         string
	TotalKeyword string
	DayFirst     bool
	DecimalComma bool
	confidence   confidenceTable
}

// confidenceTable weighs how many values agreed on the chosen amount
type confidenceTable struct {
	threeValues     int
	twoValuesAmount int
	twoValues       int
	noMatch         int
}

var defaultConfidence = confidenceTable{threeValues: 80, twoValuesAmount: 50, twoValues: 30, noMatch: 1}

var (
	SchemeITPCC = Scheme{Code: "IT_PCC", TotalKeyword: "TOTALE", DayFirst: true, DecimalComma: true, confidence: defaultConfidence}
	SchemeUK    = Scheme{Code: "UK", TotalKeyword: "TOTAL", DayFirst: true, DecimalComma: false, confidence: defaultConfidence}
	SchemeUS    = Scheme{Code: "US", TotalKeyword: "TOTAL", DayFirst: false, DecimalComma: false, confidence: defaultConfidence}
)

// SchemeFor picks the scheme of the locale's region. Unknown regions get IT_PCC.
func SchemeFor(locale language.Tag) Scheme {
	region, _ := locale.Region()
	switch region.String() {
	case "GB", "IE":
		return SchemeUK
	case "US":
		return SchemeUS
	default:
		return SchemeITPCC
	}
}

// BestAmount combines the evidence into the final amount and its confidence.
// Two corroborating values that agree with each other win over the decoded
// amount. With editing allowed, a sum of several prices that near-matches the
// decoded amount replaces it; cash minus change does so only under loose editing.
func (s Scheme) BestAmount(e Evidence, editing PriceEditing) (decimal.NullDecimal, int) {
	best := s.pickAmount(e, editing)
	return best, s.score(e, best)
}

func (s Scheme) pickAmount(e Evidence, editing PriceEditing) decimal.NullDecimal {
	if e.Amount.Valid && editing == PriceEditingSkip {
		return e.Amount
	}
	if e.Hits == 0 {
		return e.Amount
	}

	cash := e.CashValue()
	switch {
	case e.PriceList.Valid && cash.Valid && cash.Decimal.Equal(e.PriceList.Decimal):
		return cash
	case e.Subtotal.Valid && e.PriceList.Valid && e.Subtotal.Decimal.Equal(e.PriceList.Decimal):
		return e.Subtotal
	case e.Subtotal.Valid && cash.Valid && e.Subtotal.Decimal.Equal(cash.Decimal):
		return e.Subtotal
	}

	if e.Amount.Valid {
		switch {
		case e.PriceList.Valid && e.Addends > 1 && !e.PriceList.Decimal.Equal(e.Amount.Decimal):
			return e.PriceList
		case editing == PriceEditingAllowLoose && e.Change.Valid && !cash.Decimal.Equal(e.Amount.Decimal):
			return cash
		}
		return e.Amount
	}

	switch {
	case e.Subtotal.Valid:
		return e.Subtotal
	case cash.Valid:
		return cash
	default:
		return e.PriceList
	}
}

func (s Scheme) score(e Evidence, best decimal.NullDecimal) int {
	if !best.Valid {
		return 0
	}
	agree := 0
	for _, v := range []decimal.NullDecimal{e.Subtotal, e.PriceList, e.CashValue()} {
		if v.Valid && v.Decimal.Equal(best.Decimal) {
			agree++
		}
	}
	withAmount := e.Amount.Valid && e.Amount.Decimal.Equal(best.Decimal)
	switch {
	case withAmount && agree >= 2:
		return s.confidence.threeValues
	case withAmount && agree == 1:
		return s.confidence.twoValuesAmount
	case agree >= 2:
		return s.confidence.twoValues
	default:
		return s.confidence.noMatch
	}
}
