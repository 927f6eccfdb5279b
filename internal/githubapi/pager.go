package githubapi

import (
	"context"
	"net/http"

	"github.com/alimgiray/orgscope/pkg/logger"
	"github.com/sirupsen/logrus"
)

// FetchAllPages GETs startURL and keeps following the Link header's "next"
// relation until there is none, returning the items of every page in order.
//
// startURL may be relative to the client's base URL. A next link that is not
// an absolute URL on the base URL's host, or one already visited, ends the
// traversal. Any failed
// page aborts the whole call with an UpstreamError.
func FetchAllPages[T any](ctx context.Context, c *Client, startURL string) ([]T, error) {
	items := []T{}
	visited := make(map[string]struct{})

	next := startURL
	for page := 1; next != ""; page++ {
		pageItems, pageURL, link, err := fetchPage[T](ctx, c, next)
		if err != nil {
			return nil, err
		}
		visited[pageURL] = struct{}{}
		items = append(items, pageItems...)

		logger.WithFields(logrus.Fields{
			"url":   pageURL,
			"page":  page,
			"items": len(pageItems),
		}).Debug("Fetched GitHub page")

		next = ""
		if u, ok := nextPageURL(link, c.gh.BaseURL); ok {
			if _, seen := visited[u]; !seen {
				next = u
			}
		}
	}

	return items, nil
}

// fetchPage returns the decoded items, the resolved URL and the Link header
func fetchPage[T any](ctx context.Context, c *Client, pageURL string) ([]T, string, string, error) {
	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.gh.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, pageURL, "", &UpstreamError{URL: pageURL, Err: err}
	}
	resolved := req.URL.String()

	var page []T
	resp, err := c.gh.Do(reqCtx, req, &page)
	if err != nil {
		return nil, resolved, "", classifyError(resolved, resp, err)
	}

	return page, resolved, resp.Header.Get("Link"), nil
}
