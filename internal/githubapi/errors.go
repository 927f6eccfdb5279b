package githubapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/go-github/v57/github"
)

// ErrNotFound is wrapped by an UpstreamError for an upstream 404
var ErrNotFound = errors.New("resource not found on GitHub")

// UpstreamError is a failed call to the GitHub API.
// StatusCode is zero when no response was received (network error, timeout).
type UpstreamError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("GitHub request %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("GitHub request %s failed with status %d: %v", e.URL, e.StatusCode, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// RateLimitError is an UpstreamError caused by GitHub throttling the client
type RateLimitError struct {
	*UpstreamError
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return fmt.Sprintf("GitHub rate limit exceeded: %s", e.UpstreamError.Error())
	}
	return fmt.Sprintf("GitHub rate limit exceeded (resets at %s): %s",
		e.ResetAt.UTC().Format(time.RFC3339), e.UpstreamError.Error())
}

func (e *RateLimitError) Unwrap() error {
	return e.UpstreamError
}

// IsNotFound reports whether err is an upstream 404
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited reports whether err is a RateLimitError
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// classifyError converts a failed go-github call into UpstreamError or RateLimitError
func classifyError(rawURL string, resp *github.Response, err error) error {
	if err == nil {
		return nil
	}

	var (
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
		errResp  *github.ErrorResponse
	)

	switch {
	case errors.As(err, &rateErr):
		return &RateLimitError{
			UpstreamError: &UpstreamError{URL: rawURL, StatusCode: statusOf(rateErr.Response), Err: err},
			Limit:         rateErr.Rate.Limit,
			Remaining:     rateErr.Rate.Remaining,
			ResetAt:       rateErr.Rate.Reset.Time,
		}

	case errors.As(err, &abuseErr):
		rl := rateLimitFromHeaders(rawURL, abuseErr.Response, err)
		if abuseErr.RetryAfter != nil {
			rl.ResetAt = time.Now().Add(*abuseErr.RetryAfter)
		}
		return rl

	case errors.As(err, &errResp):
		status := statusOf(errResp.Response)
		switch status {
		case http.StatusForbidden, http.StatusTooManyRequests:
			return rateLimitFromHeaders(rawURL, errResp.Response, err)
		case http.StatusNotFound:
			return &UpstreamError{URL: rawURL, StatusCode: status, Err: fmt.Errorf("%w: %w", ErrNotFound, err)}
		}
		return &UpstreamError{URL: rawURL, StatusCode: status, Err: err}
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	return &UpstreamError{URL: rawURL, StatusCode: status, Err: err}
}

func rateLimitFromHeaders(rawURL string, resp *http.Response, err error) *RateLimitError {
	rl := &RateLimitError{
		UpstreamError: &UpstreamError{URL: rawURL, StatusCode: statusOf(resp), Err: err},
	}
	if resp == nil {
		return rl
	}

	if v, convErr := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit")); convErr == nil {
		rl.Limit = v
	}
	if v, convErr := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining")); convErr == nil {
		rl.Remaining = v
	}
	if v, convErr := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); convErr == nil {
		rl.ResetAt = time.Unix(v, 0)
	} else if v, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil {
		rl.ResetAt = time.Now().Add(time.Duration(v) * time.Second)
	}
	return rl
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
