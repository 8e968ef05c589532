package extract

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// TotalSearch controls how hard the engine looks for the total amount
type TotalSearch int

const (
	TotalSkip TotalSearch = iota
	TotalNormal
	TotalDeep
	TotalExtended
)

var totalSearchNames = []string{"SKIP", "NORMAL", "DEEP", "EXTENDED_SEARCH"}

func (t TotalSearch) String() string { return enumName(totalSearchNames, int(t)) }

// ParseTotalSearch parses SKIP, NORMAL, DEEP or EXTENDED_SEARCH
func ParseTotalSearch(s string) (TotalSearch, error) {
	i, err := parseEnum("total search", totalSearchNames, s)
	return TotalSearch(i), err
}

// DateSearch controls whether the engine looks for a date
type DateSearch int

const (
	DateSkip DateSearch = iota
	DateNormal
)

var dateSearchNames = []string{"SKIP", "NORMAL"}

func (d DateSearch) String() string { return enumName(dateSearchNames, int(d)) }

// ParseDateSearch parses SKIP or NORMAL
func ParseDateSearch(s string) (DateSearch, error) {
	i, err := parseEnum("date search", dateSearchNames, s)
	return DateSearch(i), err
}

// ProductsSearch controls which fragments may form the price column
type ProductsSearch int

const (
	ProductsSkip ProductsSearch = iota
	ProductsNormal
	ProductsDeep
)

var productsSearchNames = []string{"SKIP", "NORMAL", "DEEP"}

func (p ProductsSearch) String() string { return enumName(productsSearchNames, int(p)) }

// ParseProductsSearch parses SKIP, NORMAL or DEEP
func ParseProductsSearch(s string) (ProductsSearch, error) {
	i, err := parseEnum("products search", productsSearchNames, s)
	return ProductsSearch(i), err
}

// Orientation controls whether the receipt may be upside down
type Orientation int

const (
	OrientationNormal Orientation = iota
	OrientationAllowUpsideDown
	OrientationForceUpsideDown
)

var orientationNames = []string{"NORMAL", "ALLOW_UPSIDE_DOWN", "FORCE_UPSIDE_DOWN"}

func (o Orientation) String() string { return enumName(orientationNames, int(o)) }

// ParseOrientation parses NORMAL, ALLOW_UPSIDE_DOWN or FORCE_UPSIDE_DOWN
func ParseOrientation(s string) (Orientation, error) {
	i, err := parseEnum("orientation", orientationNames, s)
	return Orientation(i), err
}

// PriceEditing controls whether corroborating evidence may override the decoded amount
type PriceEditing int

const (
	PriceEditingSkip PriceEditing = iota
	PriceEditingAllowStrict
	PriceEditingAllowLoose
)

var priceEditingNames = []string{"SKIP", "ALLOW_STRICT", "ALLOW_LOOSE"}

func (p PriceEditing) String() string { return enumName(priceEditingNames, int(p)) }

// ParsePriceEditing parses SKIP, ALLOW_STRICT or ALLOW_LOOSE
func ParsePriceEditing(s string) (PriceEditing, error) {
	i, err := parseEnum("price editing", priceEditingNames, s)
	return PriceEditing(i), err
}

// Options configures an Engine
type Options struct {
	TotalSearch    TotalSearch
	DateSearch     DateSearch
	ProductsSearch ProductsSearch
	Orientation    Orientation
	PriceEditing   PriceEditing
	// Locale picks the receipt scheme: keywords, date order and decimal separator
	Locale language.Tag
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		TotalSearch:    TotalDeep,
		DateSearch:     DateNormal,
		ProductsSearch: ProductsDeep,
		Orientation:    OrientationNormal,
		PriceEditing:   PriceEditingAllowStrict,
		Locale:         language.Italian,
	}
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("UNKNOWN(%d)", i)
	}
	return names[i]
}

func parseEnum(kind string, names []string, s string) (int, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for i, n := range names {
		if n == norm {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid %s %q, want one of %s", kind, s, strings.Join(names, ", "))
}
