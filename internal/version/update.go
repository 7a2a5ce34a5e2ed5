package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	RepoOwner = "khanglvm"
	RepoName  = "gh-repo-search"

	checkInterval = 24 * time.Hour
)

// UpdateCache stores update check state.
type UpdateCache struct {
	LastUpdateCheck  time.Time `json:"lastUpdateCheck"`
	LastKnownVersion string    `json:"lastKnownVersion"`
}

// Checker looks up the latest published release.
type Checker struct {
	// BaseURL is the REST API root, e.g. https://api.github.com.
	BaseURL    string
	HTTPClient *http.Client
	// CachePath holds the last result. Empty disables caching.
	CachePath string
	Now       func() time.Time
}

// NewChecker returns a checker caching under ~/.gh-repo-search/.
func NewChecker(baseURL string) *Checker {
	c := &Checker{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Now:        time.Now,
	}
	if home, err := os.UserHomeDir(); err == nil {
		c.CachePath = filepath.Join(home, "."+RepoName, "update-cache.json")
	}
	return c
}

// Latest returns the newest release version without a "v" prefix.
// A result younger than a day is served from the cache.
func (c *Checker) Latest(ctx context.Context) (string, error) {
	cache := c.loadCache()
	if cache.LastKnownVersion != "" && c.Now().Sub(cache.LastUpdateCheck) < checkInterval {
		return cache.LastKnownVersion, nil
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.BaseURL, RepoOwner, RepoName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", UserAgent())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to check for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	tag := gjson.GetBytes(body, "tag_name").String()
	if tag == "" {
		return "", fmt.Errorf("release has no tag_name")
	}
	latest := strings.TrimPrefix(tag, "v")

	cache.LastUpdateCheck = c.Now()
	cache.LastKnownVersion = latest
	// a failed cache write only costs another request next time
	_ = c.saveCache(cache)

	return latest, nil
}

// IsNewer reports whether latest is a higher dotted version than current.
// A dev build is never considered outdated.
func IsNewer(current, latest string) bool {
	current = strings.TrimPrefix(current, "v")
	latest = strings.TrimPrefix(latest, "v")
	if current == devVersion || latest == "" {
		return false
	}

	cur := parseVersion(current)
	lat := parseVersion(latest)
	for i := 0; i < 3; i++ {
		if lat[i] != cur[i] {
			return lat[i] > cur[i]
		}
	}
	return false
}

func parseVersion(v string) [3]int {
	var out [3]int
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	for i, part := range strings.SplitN(v, ".", 3) {
		n, err := strconv.Atoi(part)
		if err != nil {
			break
		}
		out[i] = n
	}
	return out
}

func (c *Checker) loadCache() UpdateCache {
	var cache UpdateCache
	if c.CachePath == "" {
		return cache
	}
	data, err := os.ReadFile(c.CachePath)
	if err != nil {
		return cache
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return UpdateCache{}
	}
	return cache
}

func (c *Checker) saveCache(cache UpdateCache) error {
	if c.CachePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.CachePath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.CachePath, data, 0644)
}
