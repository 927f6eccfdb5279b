package githubapi

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinkHeader(t *testing.T) {
	testCases := []struct {
		name     string
		header   string
		expected map[string]string
	}{
		{
			name:   "next and last",
			header: `<https://api.github.com/orgs/acme/repos?page=2>; rel="next", <https://api.github.com/orgs/acme/repos?page=5>; rel="last"`,
			expected: map[string]string{
				"next": "https://api.github.com/orgs/acme/repos?page=2",
				"last": "https://api.github.com/orgs/acme/repos?page=5",
			},
		},
		{
			name:     "empty header",
			header:   "",
			expected: map[string]string{},
		},
		{
			name:     "missing angle brackets",
			header:   `https://api.github.com/orgs/acme/repos?page=2; rel="next"`,
			expected: map[string]string{},
		},
		{
			name:     "missing rel",
			header:   `<https://api.github.com/orgs/acme/repos?page=2>`,
			expected: map[string]string{},
		},
		{
			name:     "garbage",
			header:   `;;,,<>`,
			expected: map[string]string{},
		},
		{
			name:   "unquoted rel and odd spacing",
			header: `  <https://example.com/a?page=3> ;  REL=prev `,
			expected: map[string]string{
				"prev": "https://example.com/a?page=3",
			},
		},
		{
			name:   "multiple relations in one part",
			header: `<https://example.com/a?page=1>; rel="first prev"`,
			expected: map[string]string{
				"first": "https://example.com/a?page=1",
				"prev":  "https://example.com/a?page=1",
			},
		},
		{
			name:   "one valid part among broken ones",
			header: `broken, <https://example.com/a?page=2>; rel="next", <>; rel="last"`,
			expected: map[string]string{
				"next": "https://example.com/a?page=2",
				"last": "",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLinkHeader(tc.header))
		})
	}
}

func TestNextPageURL(t *testing.T) {
	testCases := []struct {
		name   string
		header string
		url    string
		ok     bool
	}{
		{name: "absolute", header: `<https://example.com/a?page=2>; rel="next"`, url: "https://example.com/a?page=2", ok: true},
		{name: "relative", header: `</a?page=2>; rel="next"`, ok: false},
		{name: "only last", header: `<https://example.com/a?page=2>; rel="last"`, ok: false},
		{name: "empty next", header: `<>; rel="next"`, ok: false},
		{name: "no header", header: "", ok: false},
		{name: "host case differs", header: `<https://EXAMPLE.com/a?page=2>; rel="next"`, url: "https://EXAMPLE.com/a?page=2", ok: true},
		{name: "other host", header: `<https://evil.example.net/a?page=2>; rel="next"`, ok: false},
		{name: "other port", header: `<https://example.com:8443/a?page=2>; rel="next"`, ok: false},
		{name: "scheme downgrade", header: `<http://example.com/a?page=2>; rel="next"`, ok: false},
	}

	base, err := url.Parse("https://example.com/")
	require.NoError(t, err)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, ok := nextPageURL(tc.header, base)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.url, u)
		})
	}
}
