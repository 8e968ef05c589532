package fuzzy

import (
	"strconv"
	"strings"
	"time"
)

const (
	// dateMaxDistance is the raw edit distance at which a token stops looking like a date
	dateMaxDistance = 10
	// dateMinDigits is the digit count of a full dd?mm?yyyy date
	dateMinDigits = 8
)

// dateMasks cover day/month/year groupings for the '/', '-' and '.' separators
var dateMasks = []string{
	"XX/XX/XXXX", "XXXX/XX/XX", "XX/XX/XX",
	"XX-XX-XXXX", "XXXX-XX-XX", "XX-XX-XX",
	"XX.XX.XXXX", "XXXX.XX.XX", "XX.XX.XX",
}

// FindDate looks for the token of text closest to a date mask. It returns the
// token, its distance normalized by the digit count of a full date (0 for a
// clean dd/mm/yyyy token), and false when no token is within reach of any mask.
// Ties go to the token carrying more digits.
func FindDate(text string) (string, int, bool) {
	best, bestDigits := dateMaxDistance, 0
	token := ""
	for _, p := range strings.Fields(text) {
		upper := strings.ToUpper(p)
		digits := len(repair(p, func(rune) bool { return false }))
		for _, mask := range dateMasks {
			d := Levenshtein(upper, mask)
			if d < best || (d == best && token != "" && digits > bestDigits) {
				best, bestDigits = d, digits
				token = p
			}
		}
	}
	if token == "" {
		return "", -1, false
	}
	distance := dateMinDigits - best
	if distance < 0 {
		distance = -distance
	}
	return token, distance, true
}

func isDateSeparator(r rune) bool {
	return r == '/' || r == '-' || r == '.'
}

// ParseDate turns a date token into a calendar date. A four digit first group
// means year-first; otherwise dayFirst picks dd/mm/yy(yy) over mm/dd/yy(yy).
// Two digit years are taken as 20yy.
func ParseDate(token string, dayFirst bool) (time.Time, bool) {
	groups := strings.FieldsFunc(repair(token, isDateSeparator), isDateSeparator)
	if len(groups) != 3 {
		return time.Time{}, false
	}

	var ys, ms, ds string
	switch {
	case len(groups[0]) == 4:
		ys, ms, ds = groups[0], groups[1], groups[2]
	case dayFirst:
		ds, ms, ys = groups[0], groups[1], groups[2]
	default:
		ms, ds, ys = groups[0], groups[1], groups[2]
	}
	if len(ds) > 2 || len(ms) > 2 || (len(ys) != 2 && len(ys) != 4) {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(ys)
	if err != nil {
		return time.Time{}, false
	}
	if len(ys) == 2 {
		year += 2000
	}
	month, err := strconv.Atoi(ms)
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(ds)
	if err != nil {
		return time.Time{}, false
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}
