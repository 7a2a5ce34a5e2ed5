package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/gh-repo-search/internal/config"
	"github.com/khanglvm/gh-repo-search/internal/history"
	"github.com/khanglvm/gh-repo-search/internal/route"
)

// testEnv isolates HOME, the database and the API for one test.
type testEnv struct {
	home     string
	dbPath   string
	requests int32
}

func setupEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()
	env := &testEnv{home: t.TempDir()}
	env.dbPath = filepath.Join(env.home, "data", "history.db")

	t.Setenv("HOME", env.home)
	t.Setenv(config.ConfigPathEnv, "")
	os.Unsetenv(config.ConfigPathEnv)
	t.Setenv("GH_REPO_SEARCH_DB", env.dbPath)
	t.Setenv("GH_REPO_SEARCH_RPM", "6000")
	t.Setenv("GH_REPO_SEARCH_LOG_LEVEL", "error")
	t.Setenv("GITHUB_TOKEN", "")

	if handler == nil {
		handler = reposHandler(95)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&env.requests, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("GITHUB_API_BASE_URL", srv.URL)

	return env
}

// reposHandler serves total repositories named after the query, per_page
// at a time.
func reposHandler(total int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

		type item struct {
			ID       int    `json:"id"`
			Name     string `json:"name"`
			FullName string `json:"full_name"`
			HTMLURL  string `json:"html_url"`
			Stars    int    `json:"stargazers_count"`
		}
		resp := struct {
			TotalCount int    `json:"total_count"`
			Items      []item `json:"items"`
		}{TotalCount: total, Items: []item{}}

		for i := (page - 1) * perPage; i < page*perPage && i < total; i++ {
			resp.Items = append(resp.Items, item{
				ID:       i,
				Name:     fmt.Sprintf("repo%d", i),
				FullName: fmt.Sprintf("%s/repo%d", q, i),
				HTMLURL:  fmt.Sprintf("https://github.com/%s/repo%d", q, i),
				Stars:    1200 + i,
			})
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCommandWiring(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"search", "recent", "suggest", "tui", "config", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	for alias, want := range map[string]string{"history": "recent", "i": "tui", "s": "search"} {
		cmd, _, err := root.Find([]string{alias})
		require.NoError(t, err)
		assert.Equal(t, want, cmd.Name())
	}

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

func TestSearchCommand(t *testing.T) {
	env := setupEnv(t, nil)

	out, err := execute(t, "search", "Swift", "UI")
	require.NoError(t, err)

	assert.Contains(t, out, `Repositories for "swift ui": 95 total, showing 30`)
	assert.Contains(t, out, "swift ui/repo0")
	assert.Contains(t, out, "★ 1,200")
	assert.Contains(t, out, "https://github.com/swift ui/repo29")
	assert.EqualValues(t, 1, atomic.LoadInt32(&env.requests))

	out, err = execute(t, "recent")
	require.NoError(t, err)
	assert.Contains(t, out, "Recent searches (1)")
	assert.Contains(t, out, "swift ui")
}

func TestSearchCommandAll(t *testing.T) {
	env := setupEnv(t, nil)

	out, err := execute(t, "search", "go", "--all", "--max", "50", "--json")
	require.NoError(t, err)

	var result searchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "go", result.Term)
	assert.Equal(t, 95, result.TotalCount)
	assert.Len(t, result.Items, 50)
	assert.EqualValues(t, 2, atomic.LoadInt32(&env.requests))
}

func TestSearchCommandAllUsesConfiguredCap(t *testing.T) {
	setupEnv(t, nil)
	t.Setenv("GH_REPO_SEARCH_MAX_RESULTS", "40")

	out, err := execute(t, "search", "go", "--all", "--json")
	require.NoError(t, err)

	var result searchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Items, 40)
}

func TestSearchCommandNoResults(t *testing.T) {
	setupEnv(t, reposHandler(0))

	out, err := execute(t, "search", "zzzz")
	require.NoError(t, err)
	assert.Contains(t, out, `No repositories found for "zzzz"`)
}

func TestSearchCommandAPIError(t *testing.T) {
	setupEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Validation Failed"}`))
	})

	_, err := execute(t, "search", "swift")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Validation Failed")
	assert.NotContains(t, err.Error(), "GITHUB_TOKEN")

	// the term is still remembered
	out, err := execute(t, "recent", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"query": "swift"`)
}

func TestSearchCommandRateLimitHint(t *testing.T) {
	setupEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"API rate limit exceeded for 127.0.0.1."}`))
	})

	_, err := execute(t, "search", "swift")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API rate limit exceeded")
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")

	// with a token the hint would not help
	t.Setenv("GITHUB_TOKEN", "ghp_example")
	_, err = execute(t, "search", "swift")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "GITHUB_TOKEN")
}

func TestSearchCommandBlankTerm(t *testing.T) {
	env := setupEnv(t, nil)

	_, err := execute(t, "search", "   ")
	require.Error(t, err)
	assert.True(t, history.IsInvalidInput(err))
	assert.Zero(t, atomic.LoadInt32(&env.requests))
}

func TestSearchCommandMissingBaseURL(t *testing.T) {
	setupEnv(t, nil)
	t.Setenv("GITHUB_API_BASE_URL", "")

	_, err := execute(t, "search", "swift")
	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "github.base_url", cfgErr.Field)
}

func TestRecentCommand(t *testing.T) {
	setupEnv(t, nil)

	for _, q := range []string{"swift", "go", "rust", "SWIFT"} {
		_, err := execute(t, "search", q)
		require.NoError(t, err)
	}

	out, err := execute(t, "recent", "--json")
	require.NoError(t, err)

	var records []history.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 3)
	assert.Equal(t, "swift", records[0].Query)
	assert.Equal(t, "rust", records[1].Query)

	out, err = execute(t, "recent", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Recent searches (1)")
	assert.NotContains(t, out, "rust")
}

func TestRecentEmpty(t *testing.T) {
	setupEnv(t, nil)

	out, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No recent searches.")

	out, err = execute(t, "recent", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestRecentRemove(t *testing.T) {
	setupEnv(t, nil)
	_, err := execute(t, "search", "swift")
	require.NoError(t, err)

	out, err := execute(t, "recent", "rm", " Swift ")
	require.NoError(t, err)
	assert.Contains(t, out, `✓ Removed "swift"`)

	out, err = execute(t, "recent", "remove", "swift")
	require.NoError(t, err)
	assert.Contains(t, out, `"swift" is not in recent searches`)

	out, err = execute(t, "recent")
	require.NoError(t, err)
	assert.Contains(t, out, "No recent searches.")
}

func TestRecentClear(t *testing.T) {
	setupEnv(t, nil)
	for _, q := range []string{"a", "b"} {
		_, err := execute(t, "search", q)
		require.NoError(t, err)
	}

	// stdin is not a terminal under go test
	_, err := execute(t, "recent", "clear")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	out, err := execute(t, "recent", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Recent searches cleared")

	out, err = execute(t, "recent")
	require.NoError(t, err)
	assert.Contains(t, out, "No recent searches.")
}

func TestRecentStatsAndPrune(t *testing.T) {
	env := setupEnv(t, nil)
	_, err := execute(t, "search", "swift")
	require.NoError(t, err)
	_, err = execute(t, "search", "go")
	require.NoError(t, err)

	out, err := execute(t, "recent", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, env.dbPath)
	assert.Contains(t, out, "Storage enabled:  true")
	assert.Contains(t, out, "Recent searches:  2 (cap 500)")
	assert.Contains(t, out, "Searches, last 24 hours: 2")
	assert.Contains(t, out, `Last search:      "go"`)

	out, err = execute(t, "recent", "prune", "--older-than", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "Pruned search log entries older than 1h0m0s")

	_, err = execute(t, "recent", "prune", "--older-than", "0s")
	assert.Error(t, err)
}

func TestSuggestCommand(t *testing.T) {
	setupEnv(t, nil)
	for _, q := range []string{"swift", "myswift", "swiftlint", "rust"} {
		_, err := execute(t, "search", q)
		require.NoError(t, err)
	}

	out, err := execute(t, "suggest", "swi", "--json")
	require.NoError(t, err)

	var records []history.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	var got []string
	for _, r := range records {
		got = append(got, r.Query)
	}
	assert.Equal(t, []string{"swiftlint", "swift", "myswift"}, got)

	out, err = execute(t, "suggest", "kotlin")
	require.NoError(t, err)
	assert.Contains(t, out, `No suggestions for "kotlin"`)
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupEnv(t, nil)
	t.Setenv("GITHUB_TOKEN", "ghp_secret")
	path := filepath.Join(env.home, "custom.yaml")

	out, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote "+path)

	_, err = execute(t, "--config", path, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "--config", path, "config", "init", "--force")
	require.NoError(t, err)

	out, err = execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url:")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "ghp_secret")
}

func TestConfigShowReportsBadConfig(t *testing.T) {
	env := setupEnv(t, nil)
	path := filepath.Join(env.home, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("suggest:\n  limit: -1\n"), 0644))

	_, err := execute(t, "--config", path, "config", "show")
	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	// version still works with a broken config
	out, err := execute(t, "--config", path, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:")
}

func TestVersionCommand(t *testing.T) {
	setupEnv(t, nil)

	out, err := execute(t, "version")
	require.NoError(t, err)
	for _, want := range []string{"Version:", "Commit:", "Built:"} {
		assert.True(t, strings.Contains(out, want), "missing %q in %q", want, out)
	}
}

func TestPrintRoute(t *testing.T) {
	r, err := route.ToWebPage("https://github.com/realm/SwiftLint", "realm/SwiftLint")
	require.NoError(t, err)

	var buf bytes.Buffer
	printRoute(&buf, r)
	assert.Equal(t, "realm/SwiftLint\nhttps://github.com/realm/SwiftLint\n", buf.String())

	buf.Reset()
	results, err := route.ToResults("swift")
	require.NoError(t, err)
	printRoute(&buf, results)
	printRoute(&buf, route.Route{})
	assert.Empty(t, buf.String())
}

func TestSearchRequiresArgs(t *testing.T) {
	setupEnv(t, nil)

	_, err := execute(t, "search")
	assert.Error(t, err)
}
