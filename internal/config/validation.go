/*
Package config provides validation for loaded configuration.

Limits that were once hardcoded (result cap, suggestion cap) are settings,
so they are checked here rather than trusted.
*/
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks required and bounded settings.
// It returns a *ConfigurationError describing the first problem found.
func (c *Config) Validate() error {
	if err := ValidateBaseURL(c.GitHub.BaseURL); err != nil {
		return err
	}

	positives := []struct {
		field string
		value int
	}{
		{"github.max_results", c.GitHub.MaxResults},
		{"github.per_page", c.GitHub.PerPage},
		{"github.requests_per_minute", c.GitHub.RequestsPerMinute},
		{"history.list_limit", c.History.ListLimit},
		{"history.max_entries", c.History.MaxEntries},
		{"suggest.limit", c.Suggest.Limit},
	}
	for _, p := range positives {
		if p.value <= 0 {
			return &ConfigurationError{
				Field:   p.field,
				Message: fmt.Sprintf("must be positive, got %d", p.value),
			}
		}
	}

	if c.GitHub.PerPage > 100 {
		return &ConfigurationError{
			Field:   "github.per_page",
			Message: fmt.Sprintf("must be at most 100, got %d", c.GitHub.PerPage),
		}
	}

	if c.Suggest.Debounce < 0 {
		return &ConfigurationError{
			Field:   "suggest.debounce",
			Message: "must not be negative",
		}
	}

	if c.GitHub.Timeout <= 0 {
		return &ConfigurationError{
			Field:   "github.timeout",
			Message: "must be positive",
		}
	}

	return nil
}

// ValidateBaseURL checks that the API base URL is present and absolute.
func ValidateBaseURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return &ConfigurationError{
			Field:   "github.base_url",
			Message: "API base URL is not configured",
			Hint:    "Set GITHUB_API_BASE_URL or github.base_url in the config file",
		}
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigurationError{
			Field:   "github.base_url",
			Message: fmt.Sprintf("not an absolute http(s) URL: %q", raw),
		}
	}

	return nil
}
