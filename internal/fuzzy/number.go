package fuzzy

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	// MaxCost is returned by NumericConfidence for tokens that cannot be a price
	MaxCost = float64(math.MaxInt32)

	// AcceptCost is the highest NumericConfidence cost still treated as a number
	AcceptCost = 0.4

	// NumberMaxLength bounds the sanitized length (nn.nnn,nn fits)
	NumberMaxLength = 10

	// MinDigitDensity is the minimum fraction of the token that must read as digits
	MinDigitDensity = 0.5

	specialCharCost = 0.5
)

// lookalikes maps glyphs OCR commonly confuses with digits
var lookalikes = map[rune]rune{
	'O': '0', 'o': '0', 'D': '0', 'Q': '0',
	'I': '1', 'l': '1', 'i': '1', '|': '1',
	'Z': '2', 'z': '2',
	'S': '5', 's': '5',
	'B': '8',
	'G': '6',
}

var strictAmount = regexp.MustCompile(`^-?\d+(?:[.,]\d{1,2})?$`)

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSeparator(r rune) bool {
	return r == '.' || r == ','
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// repair replaces lookalike glyphs with digits and drops everything that is
// neither a digit nor one of keep
func repair(s string, keep func(rune) bool) string {
	var b strings.Builder
	for _, r := range s {
		if d, ok := lookalikes[r]; ok {
			r = d
		}
		if isDigit(r) || keep(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeNumber projects s onto digits and at most one '.' decimal point.
// The last '.' or ',' is the decimal separator when one or two digits follow
// it. When exactly three digits follow it, it is a thousands separator only if
// it is the locale's thousands separator (',' unless decimalComma).
func SanitizeNumber(s string, decimalComma bool) string {
	raw := repair(stripSpaces(s), isSeparator)

	last := strings.LastIndexFunc(raw, isSeparator)
	if last < 0 {
		return raw
	}

	tail := strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return -1
		}
		return r
	}, raw[last+1:])
	head := strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return -1
		}
		return r
	}, raw[:last])

	thousands := ','
	if decimalComma {
		thousands = '.'
	}

	switch {
	case tail == "":
		return head
	case len(tail) == 3 && rune(raw[last]) == thousands:
		return head + tail
	case head == "":
		return "0." + tail
	default:
		return head + "." + tail
	}
}

// NumericConfidence scores how plausible original is as a price given its
// sanitized projection. Lower is better; MaxCost means "not a number".
// Characters that had to be replaced or dropped cost half, extra decimal
// points in sanitized cost one; the sum is normalized by the sanitized length.
func NumericConfidence(original, sanitized string) float64 {
	orig := []rune(stripSpaces(original))
	san := []rune(sanitized)
	if len(san) == 0 || len(san) >= NumberMaxLength {
		return MaxCost
	}

	digits, points := 0, 0
	for _, r := range san {
		switch {
		case isDigit(r):
			digits++
		case r == '.':
			points++
		}
	}
	if float64(digits) < float64(len(orig))*MinDigitDensity {
		return MaxCost
	}

	specials, separators := 0, 0
	for _, r := range orig {
		switch {
		case isDigit(r):
		case isSeparator(r):
			separators++
		default:
			specials++
		}
	}
	if separators > 1 {
		specials += separators - 1
	}

	remaining := len(san) - digits
	if points > 0 {
		remaining--
	}
	return (float64(specials)*specialCharCost + float64(remaining)) / float64(len(san))
}

// IsPossibleNumber reports whether s reads as a price under the accept threshold
func IsPossibleNumber(s string, decimalComma bool) bool {
	return NumericConfidence(s, SanitizeNumber(s, decimalComma)) < AcceptCost
}

// ParseAmount decodes a monetary string. Clean strings ("15,50", "-3.20") are
// parsed directly; anything else is retried once through SanitizeNumber and
// rejected when too little of it reads as digits.
func ParseAmount(s string, decimalComma bool) (decimal.Decimal, bool) {
	clean := strings.TrimSpace(s)
	if strictAmount.MatchString(clean) {
		if d, err := decimal.NewFromString(strings.ReplaceAll(clean, ",", ".")); err == nil {
			return d, true
		}
	}

	sanitized := SanitizeNumber(s, decimalComma)
	if strings.IndexFunc(sanitized, isDigit) < 0 || NumericConfidence(s, sanitized) == MaxCost {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(sanitized)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
