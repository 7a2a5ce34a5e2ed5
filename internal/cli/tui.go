package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khanglvm/gh-repo-search/internal/route"
	"github.com/khanglvm/gh-repo-search/internal/tui"
)

// NewTUICmd creates the 'tui' command.
func NewTUICmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "tui",
		Aliases: []string{"i"},
		Short:   "Start the interactive search screen",
		Long: `Start the interactive search screen.

Type to see suggestions from recent searches, press enter to search, and
press enter on a repository to print its URL and exit. Logs go to log.file
when set and are discarded otherwise.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationInteractive: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), root.app, cmd.OutOrStdout())
		},
	}
}

func runTUI(ctx context.Context, app *App, out io.Writer) error {
	client, err := app.SearchClient()
	if err != nil {
		return err
	}

	m := tui.New(ctx, app.History, client,
		tui.WithRecorder(app.DB),
		tui.WithMaxResults(app.Config.GitHub.MaxResults),
		tui.WithListLimit(app.Config.History.ListLimit),
		tui.WithSuggestLimit(app.Config.Suggest.Limit),
		tui.WithDebounce(app.Config.Suggest.Debounce),
		tui.WithLogger(app.Logger),
	)

	r, err := tui.Run(ctx, m)
	if err != nil {
		return err
	}
	printRoute(out, r)
	return nil
}

func printRoute(out io.Writer, r route.Route) {
	if r.Kind != route.WebPage {
		return
	}
	if r.Title != "" {
		fmt.Fprintln(out, r.Title)
	}
	fmt.Fprintln(out, r.URL)
}
