package extract

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Evidence gathers the values found around a total. A value is set only once
// it corroborated the decoded amount (or, with no decoded amount, once found).
// Hits counts the distinct corroborating values.
type Evidence struct {
	Amount    decimal.NullDecimal
	Subtotal  decimal.NullDecimal
	PriceList decimal.NullDecimal
	Cash      decimal.NullDecimal
	Change    decimal.NullDecimal
	// Addends is the number of prices summed into PriceList
	Addends int
	Hits    int
}

func (e *Evidence) flagSubtotal(v decimal.Decimal) {
	if !e.Subtotal.Valid {
		e.Hits++
	}
	e.Subtotal = decimal.NewNullDecimal(v)
}

func (e *Evidence) flagPriceList(v decimal.Decimal) {
	if !e.PriceList.Valid {
		e.Hits++
	}
	e.PriceList = decimal.NewNullDecimal(v)
}

func (e *Evidence) flagCash(v decimal.Decimal) {
	if !e.Cash.Valid {
		e.Hits++
	}
	e.Cash = decimal.NewNullDecimal(v)
}

func (e *Evidence) flagChange(v decimal.Decimal) {
	if !e.Change.Valid {
		e.Hits++
	}
	e.Change = decimal.NewNullDecimal(v)
}

// CashValue returns what the customer paid: cash minus change when the change
// was corroborated, cash alone otherwise
func (e Evidence) CashValue() decimal.NullDecimal {
	if !e.Cash.Valid {
		return decimal.NullDecimal{}
	}
	if e.Change.Valid {
		return decimal.NewNullDecimal(e.Cash.Decimal.Sub(e.Change.Decimal))
	}
	return e.Cash
}

// fixed renders a money value with two decimals, nil when unset
func fixed(v decimal.NullDecimal) *string {
	if !v.Valid {
		return nil
	}
	s := v.Decimal.StringFixed(2)
	return &s
}

func (e Evidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount    *string `json:"amount"`
		Subtotal  *string `json:"subtotal"`
		PriceList *string `json:"price_list"`
		Cash      *string `json:"cash"`
		Change    *string `json:"change"`
		Addends   int     `json:"addends"`
		Hits      int     `json:"hits"`
	}{
		Amount:    fixed(e.Amount),
		Subtotal:  fixed(e.Subtotal),
		PriceList: fixed(e.PriceList),
		Cash:      fixed(e.Cash),
		Change:    fixed(e.Change),
		Addends:   e.Addends,
		Hits:      e.Hits,
	})
}
