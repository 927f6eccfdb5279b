package githubapi

import (
	"net/url"
	"strings"
)

// ParseLinkHeader turns an RFC 8288 Link header into a relation -> URL map.
//
//	<https://api.github.com/orgs/x/repos?page=2>; rel="next", <...?page=5>; rel="last"
//
// Parts that are not in <url>; rel="name" form are skipped.
func ParseLinkHeader(header string) map[string]string {
	links := make(map[string]string)
	if strings.TrimSpace(header) == "" {
		return links
	}

	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}

		target := strings.TrimSpace(segments[0])
		if len(target) < 2 || !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		target = target[1 : len(target)-1]

		for _, param := range segments[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
				continue
			}
			value = strings.Trim(strings.TrimSpace(value), `"`)
			// rel may list several space separated relations
			for _, rel := range strings.Fields(value) {
				links[strings.ToLower(rel)] = target
			}
		}
	}

	return links
}

// nextPageURL returns the absolute URL of the next page, if any. Links to a
// scheme or host other than base's are not followed, the token would go with them.
func nextPageURL(header string, base *url.URL) (string, bool) {
	next, ok := ParseLinkHeader(header)["next"]
	if !ok || next == "" {
		return "", false
	}
	u, err := url.Parse(next)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", false
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return "", false
	}
	return u.String(), true
}
