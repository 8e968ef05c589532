package extract

import (
	"log/slog"
	"time"

	"github.com/zombor/receipt-reader/internal/fuzzy"
)

// resolveDate returns the first date found scanning fragments from the most
// to the least likely place for a date, nil when none parses
func resolveDate(l *Layout, dayFirst bool) *time.Time {
	candidates := make([]Scored[Fragment], 0, l.Len())
	for _, f := range l.Fragments() {
		candidates = append(candidates, Scored[Fragment]{Value: f, Score: float64(DateBlockScore(l, f))})
	}
	sortScored(candidates, compareNatural)

	for _, c := range candidates {
		token, distance, ok := fuzzy.FindDate(c.Value.Value)
		if !ok {
			continue
		}
		date, ok := fuzzy.ParseDate(token, dayFirst)
		if !ok {
			continue
		}
		slog.Debug("Found date", "token", token, "distance", distance, "score", c.Score)
		return &date
	}
	return nil
}
