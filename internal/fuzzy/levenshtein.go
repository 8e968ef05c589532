package fuzzy

import "strings"

// Levenshtein returns the edit distance between a and b, counted in runes.
// Comparison is case-sensitive; callers upper-case both sides when they need otherwise.
func Levenshtein(a, b string) int {
	s, t := []rune(a), []rune(b)
	if len(s) == 0 {
		return len(t)
	}
	if len(t) == 0 {
		return len(s)
	}

	prev := make([]int, len(t)+1)
	curr := make([]int, len(t)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s); i++ {
		curr[0] = i
		for j := 1; j <= len(t); j++ {
			cost := 1
			if s[i-1] == t[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(t)]
}

// FindSubstring splits text on whitespace and returns the smallest
// case-insensitive edit distance between any token and pattern. The result
// never exceeds the rune length of pattern. Empty text yields -1.
func FindSubstring(text, pattern string) int {
	if text == "" {
		return -1
	}
	target := strings.ToUpper(pattern)
	best := len([]rune(target))
	for _, token := range strings.Fields(text) {
		if d := Levenshtein(strings.ToUpper(token), target); d < best {
			best = d
		}
	}
	return best
}
