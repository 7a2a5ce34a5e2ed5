package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/khanglvm/gh-repo-search/internal/history"
)

// dateLayout renders last-used dates as "10. 16.".
const dateLayout = "01. 02."

// NewRecentCmd creates the 'recent' command and its subcommands.
func NewRecentCmd(root *rootOptions) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "recent",
		Aliases: []string{"history"},
		Short:   "List recent searches",
		Long:    `Display recent searches, most recently used first.`,
		Example: `  gh-repo-search recent
  gh-repo-search recent --limit 3
  gh-repo-search recent --json
  gh-repo-search recent remove swift
  gh-repo-search recent clear --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = root.app.Config.History.ListLimit
			}
			return runRecent(root.app, cmd.OutOrStdout(), limit, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries to show (default history.list_limit)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	cmd.AddCommand(newRecentRemoveCmd(root))
	cmd.AddCommand(newRecentClearCmd(root))
	cmd.AddCommand(newRecentStatsCmd(root))
	cmd.AddCommand(newRecentPruneCmd(root))

	return cmd
}

func runRecent(app *App, out io.Writer, limit int, jsonOutput bool) error {
	records := app.History.List(limit)

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if records == nil {
			records = []history.Record{}
		}
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No recent searches.")
		return nil
	}

	fmt.Fprintf(out, "Recent searches (%d):\n\n", len(records))
	printRecords(out, records)
	return nil
}

func printRecords(out io.Writer, records []history.Record) {
	width := 0
	for _, r := range records {
		if len(r.Query) > width {
			width = len(r.Query)
		}
	}
	for _, r := range records {
		fmt.Fprintf(out, "  %-*s  %s\n", width, r.Query, r.LastUsedAt.Local().Format(dateLayout))
	}
}

// newRecentRemoveCmd deletes one recent search.
func newRecentRemoveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <query...>",
		Aliases: []string{"rm"},
		Short:   "Remove a recent search",
		Example: `  gh-repo-search recent remove swift
  gh-repo-search recent rm "language:go"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecentRemove(cmd.Context(), root.app, cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}
}

func runRecentRemove(ctx context.Context, app *App, out io.Writer, query string) error {
	before := app.History.Len()
	if err := app.History.Remove(ctx, query); err != nil {
		return fmt.Errorf("failed to remove %q: %w", query, err)
	}

	if app.History.Len() == before {
		fmt.Fprintf(out, "%q is not in recent searches\n", history.Normalize(query))
		return nil
	}
	fmt.Fprintf(out, "✓ Removed %q\n", history.Normalize(query))
	return nil
}

// newRecentClearCmd deletes every recent search.
func newRecentClearCmd(root *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				confirmed, err := confirmClear(root.app.History.Len())
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}
			return runRecentClear(cmd.Context(), root.app, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func confirmClear(n int) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("refusing to clear without confirmation; pass --yes")
	}

	var confirm bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %d recent searches?", n)).
				Description("This cannot be undone.").
				Affirmative("Yes, clear").
				Negative("Cancel").
				Value(&confirm),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return confirm, nil
}

func runRecentClear(ctx context.Context, app *App, out io.Writer) error {
	if err := app.History.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear recent searches: %w", err)
	}
	fmt.Fprintln(out, "Recent searches cleared")
	return nil
}

// newRecentStatsCmd shows history and search log statistics.
func newRecentStatsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show search statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecentStats(cmd.Context(), root.app, cmd.OutOrStdout(), time.Now())
		},
	}
}

func runRecentStats(ctx context.Context, app *App, out io.Writer, now time.Time) error {
	fmt.Fprintln(out, "Search Statistics")
	fmt.Fprintln(out, "=================")
	fmt.Fprintf(out, "Database:         %s\n", app.DB.Path())
	fmt.Fprintf(out, "Storage enabled:  %v\n", app.DB.Enabled())
	fmt.Fprintf(out, "Recent searches:  %d (cap %d)\n", app.History.Len(), app.Config.History.MaxEntries)

	windows := []struct {
		label string
		since time.Duration
	}{
		{"last 24 hours", 24 * time.Hour},
		{"last 7 days", 7 * 24 * time.Hour},
		{"last 30 days", 30 * 24 * time.Hour},
	}
	for _, w := range windows {
		n, err := app.DB.CountSearches(ctx, now.Add(-w.since))
		if err != nil {
			return fmt.Errorf("failed to count searches: %w", err)
		}
		fmt.Fprintf(out, "Searches, %-13s %s\n", w.label+":", humanize.Comma(int64(n)))
	}

	if last := app.History.List(1); len(last) > 0 {
		fmt.Fprintf(out, "Last search:      %q %s\n", last[0].Query, humanize.RelTime(last[0].LastUsedAt, now, "ago", "from now"))
	}
	return nil
}

// newRecentPruneCmd drops old search log entries.
func newRecentPruneCmd(root *rootOptions) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete search log entries older than a retention period",
		Long: `Delete search log entries older than a retention period.

Recent searches are not affected; use 'recent remove' or 'recent clear'.`,
		Example: `  gh-repo-search recent prune
  gh-repo-search recent prune --older-than 168h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			if err := root.app.DB.Cleanup(olderThan); err != nil {
				return fmt.Errorf("failed to prune search log: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned search log entries older than %s\n", olderThan)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "Retention period")
	return cmd
}
