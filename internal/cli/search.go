package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/khanglvm/gh-repo-search/internal/github"
	"github.com/khanglvm/gh-repo-search/internal/history"
	"github.com/khanglvm/gh-repo-search/internal/storage"
)

type searchOptions struct {
	all        bool
	max        int
	page       int
	jsonOutput bool
}

// NewSearchCmd creates the 'search' command.
func NewSearchCmd(root *rootOptions) *cobra.Command {
	opts := searchOptions{}

	cmd := &cobra.Command{
		Use:     "search <term...>",
		Aliases: []string{"s"},
		Short:   "Search GitHub repositories",
		Long: `Search GitHub repositories and record the term in recent searches.

By default one page of results is fetched. Use --all to keep fetching
pages until the result cap (github.max_results) is reached.`,
		Example: `  gh-repo-search search swift
  gh-repo-search search "language:go stars:>1000"
  gh-repo-search search swiftlint --all --max 200
  gh-repo-search search swift --page 3 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), root.app, cmd.OutOrStdout(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "Fetch every page up to the result cap")
	cmd.Flags().IntVarP(&opts.max, "max", "m", 0, "Result cap for --all (default github.max_results)")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page to fetch when --all is not set")
	cmd.Flags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

type searchOutput struct {
	Term              string              `json:"term"`
	TotalCount        int                 `json:"total_count"`
	IncompleteResults bool                `json:"incomplete_results"`
	Items             []github.Repository `json:"items"`
}

// runSearch records term, fetches results and prints them.
func runSearch(ctx context.Context, app *App, out io.Writer, term string, opts searchOptions) error {
	rec, err := app.History.Upsert(ctx, term)
	switch {
	case history.IsInvalidInput(err):
		return err
	case err != nil:
		// results are still worth showing
		app.Logger.Warn("failed to record search", "err", err)
		term = history.Normalize(term)
	default:
		term = rec.Query
	}

	client, err := app.SearchClient()
	if err != nil {
		return err
	}

	var resp *github.SearchResponse
	if opts.all {
		limit := opts.max
		if limit <= 0 {
			limit = app.Config.GitHub.MaxResults
		}
		resp, err = github.FetchAll(ctx, client, term, limit)
	} else {
		resp, err = client.SearchRepositories(ctx, term, opts.page)
	}
	if err != nil {
		if github.IsRateLimited(err) && app.Config.GitHub.Token == "" {
			return fmt.Errorf("search failed: %w\n💡 %s", err, github.RateLimitHint)
		}
		return fmt.Errorf("search failed: %w", err)
	}

	app.DB.RecordSearch(ctx, storage.NewSearchRecord(term, len(resp.Items), resp.TotalCount))

	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(searchOutput{
			Term:              term,
			TotalCount:        resp.TotalCount,
			IncompleteResults: resp.IncompleteResults,
			Items:             resp.Items,
		})
	}

	printResults(out, term, resp)
	return nil
}

func printResults(out io.Writer, term string, resp *github.SearchResponse) {
	if len(resp.Items) == 0 {
		fmt.Fprintf(out, "No repositories found for %q.\n", term)
		return
	}

	fmt.Fprintf(out, "Repositories for %q: %s total, showing %s\n\n",
		term, humanize.Comma(int64(resp.TotalCount)), humanize.Comma(int64(len(resp.Items))))

	width := 0
	for _, r := range resp.Items {
		if n := len(repoName(r)); n > width {
			width = n
		}
	}
	for _, r := range resp.Items {
		fmt.Fprintf(out, "  %-*s  ★ %-7s  %s\n", width, repoName(r), humanize.Comma(int64(r.StargazersCount)), r.HTMLURL)
	}

	if resp.IncompleteResults {
		fmt.Fprintln(out, "\nResults may be incomplete (the search timed out on GitHub's side).")
	}
}

func repoName(r github.Repository) string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Owner.Login + "/" + r.Name
}
