package memory

import (
	"sort"
	"strings"
	"unicode"
)

// stopWords are excluded from the keyword set in both scripts.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "for": true, "i": true, "in": true, "is": true,
	"it": true, "my": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "this": true, "to": true, "was": true, "we": true, "with": true,
	"的": true, "了": true, "是": true, "我": true, "你": true, "在": true,
	"和": true, "有": true, "这": true, "那": true,
}

// normalizeQuery lowercases the query and strips punctuation, keeping
// letters, digits and spaces.
func normalizeQuery(query string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(query) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

// isCJK reports whether the rune belongs to a CJK script, where whitespace
// tokenization alone produces useless keywords.
func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}

func containsCJK(s string) bool {
	for _, r := range s {
		if isCJK(r) {
			return true
		}
	}
	return false
}

// Keywords builds the deduplicated keyword set for a query. For CJK queries
// it combines every single character, every adjacent character bigram and
// every whitespace token; otherwise it splits on whitespace. Stop words are
// excluded in both cases. An empty result means no active search.
func Keywords(query string) []string {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return nil
	}

	tokens := strings.Fields(normalized)

	var candidates []string
	if containsCJK(normalized) {
		for _, token := range tokens {
			runes := []rune(token)
			for _, r := range runes {
				candidates = append(candidates, string(r))
			}
			for i := 0; i+1 < len(runes); i++ {
				candidates = append(candidates, string(runes[i:i+2]))
			}
		}
	}
	candidates = append(candidates, tokens...)

	seen := map[string]bool{}
	var keywords []string
	for _, k := range candidates {
		if stopWords[k] || seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
	}
	return keywords
}

// score counts how many keywords occur as substrings of the entry's
// transcript concatenated with its sentiment label, case-insensitive. The
// linear ramp saturates at 1.0 once roughly half the keywords hit, which is
// deliberately generous to partial matches.
func score(e *Entry, keywords []string) float64 {
	haystack := strings.ToLower(e.Transcript + " " + string(e.Sentiment))

	hits := 0
	for _, k := range keywords {
		if strings.Contains(haystack, k) {
			hits++
		}
	}

	s := float64(hits) / maxf(1, 0.5*float64(len(keywords)))
	if s > 1 {
		s = 1
	}
	return s
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Rank scores every entry against the query and sorts entries in place.
// It returns whether a search is active (non-empty keyword set).
//
// With a positive score anywhere, all entries sort by descending score;
// otherwise, including for empty or all-stop-word queries, every score
// resets to 0 and ordering falls back to descending recency.
func Rank(entries []*Entry, query string) bool {
	keywords := Keywords(query)

	if len(keywords) == 0 {
		for _, e := range entries {
			e.MatchScore = 0
		}
		sortByRecency(entries)
		return false
	}

	anyPositive := false
	for _, e := range entries {
		e.MatchScore = score(e, keywords)
		if e.MatchScore > 0 {
			anyPositive = true
		}
	}

	if !anyPositive {
		sortByRecency(entries)
		return true
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].MatchScore != entries[j].MatchScore {
			return entries[i].MatchScore > entries[j].MatchScore
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return true
}

func sortByRecency(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}
