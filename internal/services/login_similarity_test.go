package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"alice", "alcie", 2},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, levenshtein([]rune(tt.a), []rune(tt.b)))
		})
	}
}

func TestLoginSimilarity(t *testing.T) {
	s := NewLoginSimilarity(0, DefaultSuggestionThreshold)

	assert.Equal(t, 1.0, s.Similarity("Octo-Cat", "octocat"))
	assert.Equal(t, 0.0, s.Similarity("", "octocat"))
	assert.Greater(t, s.Similarity("octocat", "octocat2"), s.Similarity("octocat", "hubot"))
	assert.LessOrEqual(t, s.Similarity("octo", "octocat"), 1.0)
}

func TestLoginSimilaritySuggest(t *testing.T) {
	tests := []struct {
		name       string
		login      string
		candidates []string
		limit      int
		want       []string
	}{
		{"typo", "alcie", []string{"alice", "bob", "carol"}, 3, []string{"alice"}},
		{"prefix ranks closest first", "alic", []string{"malice", "alicia", "bob", "alice"}, 2, []string{"alice", "alicia"}},
		{"nothing close", "zzzzzz", []string{"alice", "bob"}, 3, []string{}},
		{"no candidates", "alice", nil, 3, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLoginSimilarity(tt.limit, DefaultSuggestionThreshold)
			assert.Equal(t, tt.want, s.Suggest(tt.login, tt.candidates))
		})
	}
}
