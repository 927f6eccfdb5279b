package services

import (
	"sort"
	"strings"
	"unicode"
)

const (
	DefaultSuggestionLimit     = 3
	DefaultSuggestionThreshold = 0.6
)

// LoginSimilarity ranks known logins against a login that was not found
type LoginSimilarity struct {
	limit     int
	threshold float64
}

type loginScore struct {
	login string
	score float64
}

func NewLoginSimilarity(limit int, threshold float64) *LoginSimilarity {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	return &LoginSimilarity{limit: limit, threshold: threshold}
}

// Similarity returns a score between 0 (unrelated) and 1 (same login ignoring case and punctuation)
func (s *LoginSimilarity) Similarity(a, b string) float64 {
	a, b = normalizeLogin(a), normalizeLogin(b)
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	score := 1.0 - float64(levenshtein(ra, rb))/float64(longest)

	// Prefix and containment matches read as likely typos of the same login
	if strings.Contains(a, b) || strings.Contains(b, a) {
		score += 0.2
	}
	score += float64(commonPrefix(ra, rb)) / float64(longest) * 0.1

	return min(score, 1.0)
}

// Suggest returns up to limit candidates scoring at least the threshold, best first
func (s *LoginSimilarity) Suggest(login string, candidates []string) []string {
	scored := make([]loginScore, 0, len(candidates))
	for _, candidate := range candidates {
		score := s.Similarity(login, candidate)
		if score >= s.threshold {
			scored = append(scored, loginScore{login: candidate, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	suggestions := make([]string, 0, min(len(scored), s.limit))
	for _, sc := range scored[:min(len(scored), s.limit)] {
		suggestions = append(suggestions, sc.login)
	}
	return suggestions
}

// normalizeLogin lowercases and keeps letters and digits only
func normalizeLogin(login string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(login) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// levenshtein keeps two rows of the edit distance matrix
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j], curr[j-1], prev[j-1])
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func commonPrefix(a, b []rune) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
