package github

import (
	"errors"
	"fmt"
)

// ErrEmptyTerm is returned when a search is requested for blank input.
var ErrEmptyTerm = errors.New("search term is required")

// RateLimitHint is shown next to a rate-limit failure.
const RateLimitHint = "Set GITHUB_TOKEN to raise the search rate limit, or wait a minute and retry"

// NetworkError reports a failed request: either the transport failed or
// the API answered with a non-200 status.
type NetworkError struct {
	StatusCode int    // 0 when no response was received
	Message    string // "message" field of the API error body, if any
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("network request failed: %v", e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("GitHub API returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("GitHub API returned status %d", e.StatusCode)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is a 403 or 429 from the API.
func IsRateLimited(err error) bool {
	var ne *NetworkError
	if !errors.As(err, &ne) {
		return false
	}
	return ne.StatusCode == 403 || ne.StatusCode == 429
}
