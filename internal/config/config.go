/*
Package config handles loading and saving gh-repo-search configuration.

Configuration is read from an optional YAML file (default ~/.gh-repo-search.yaml)
and overridden by environment variables. Every field has a default, so the
program runs with no file at all.

Schema:

	github:
	  base_url: https://api.github.com
	  token: ""
	  max_results: 1000
	  per_page: 30
	  timeout: 10s
	  requests_per_minute: 10
	history:
	  list_limit: 10
	  max_entries: 500
	suggest:
	  limit: 10
	  debounce: 300ms
	storage:
	  path: ~/.gh-repo-search/history.db
	log:
	  level: warn
	  file: ""
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// AppName is used for default file and directory names.
	AppName = "gh-repo-search"

	// ConfigPathEnv overrides the config file location.
	ConfigPathEnv = "GH_REPO_SEARCH_CONFIG"
)

// Config represents the root configuration structure.
type Config struct {
	GitHub  GitHubConfig  `yaml:"github"`
	History HistoryConfig `yaml:"history"`
	Suggest SuggestConfig `yaml:"suggest"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// GitHubConfig configures the repository search API client.
type GitHubConfig struct {
	// BaseURL is the API root, e.g. https://api.github.com or a GHES /api/v3 URL.
	BaseURL string `yaml:"base_url" env:"GITHUB_API_BASE_URL" env-default:"https://api.github.com"`

	// Token is sent as a bearer token when set.
	Token string `yaml:"token" env:"GITHUB_TOKEN"`

	// MaxResults caps how many repositories are accumulated across pages.
	MaxResults int `yaml:"max_results" env:"GH_REPO_SEARCH_MAX_RESULTS" env-default:"1000"`

	// PerPage is the page size requested from the API.
	PerPage int `yaml:"per_page" env:"GH_REPO_SEARCH_PER_PAGE" env-default:"30"`

	Timeout time.Duration `yaml:"timeout" env:"GH_REPO_SEARCH_TIMEOUT" env-default:"10s"`

	// RequestsPerMinute throttles page fetches. The unauthenticated search quota is 10.
	RequestsPerMinute int `yaml:"requests_per_minute" env:"GH_REPO_SEARCH_RPM" env-default:"10"`
}

// HistoryConfig configures the recent-search store.
type HistoryConfig struct {
	ListLimit  int `yaml:"list_limit"  env:"GH_REPO_SEARCH_RECENT_LIMIT" env-default:"10"`
	MaxEntries int `yaml:"max_entries" env:"GH_REPO_SEARCH_MAX_HISTORY"  env-default:"500"`
}

// SuggestConfig configures live suggestions.
type SuggestConfig struct {
	Limit    int           `yaml:"limit"    env:"GH_REPO_SEARCH_SUGGEST_LIMIT" env-default:"10"`
	Debounce time.Duration `yaml:"debounce" env:"GH_REPO_SEARCH_DEBOUNCE"      env-default:"300ms"`
}

// StorageConfig configures the local database.
type StorageConfig struct {
	// Path is the SQLite database file. Empty means ~/.gh-repo-search/history.db.
	Path string `yaml:"path" env:"GH_REPO_SEARCH_DB"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" env:"GH_REPO_SEARCH_LOG_LEVEL" env-default:"warn"`

	// File enables a rotated log file instead of stderr.
	File string `yaml:"file" env:"GH_REPO_SEARCH_LOG_FILE"`
}

// NewConfig returns a configuration populated with defaults.
func NewConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			BaseURL:           "https://api.github.com",
			MaxResults:        1000,
			PerPage:           30,
			Timeout:           10 * time.Second,
			RequestsPerMinute: 10,
		},
		History: HistoryConfig{
			ListLimit:  10,
			MaxEntries: 500,
		},
		Suggest: SuggestConfig{
			Limit:    10,
			Debounce: 300 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// GetDefaultConfigPath returns the path to ~/.gh-repo-search.yaml
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, "."+AppName+".yaml"), nil
}

// GetDefaultDBPath returns the path to ~/.gh-repo-search/history.db
func GetDefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, "."+AppName, "history.db"), nil
}
