package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/gh-repo-search/internal/history"
	"github.com/khanglvm/gh-repo-search/internal/suggest"
)

// NewSuggestCmd creates the 'suggest' command.
func NewSuggestCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "suggest <input...>",
		Short: "Show suggestions from recent searches",
		Long: `Print the recent searches that would be suggested for the given input.

An exact match comes first, then searches starting with the input, then
those merely containing it; each group is ordered by most recent use.`,
		Example: `  gh-repo-search suggest sw
  gh-repo-search suggest swift --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(root.app, cmd.OutOrStdout(), strings.Join(args, " "), jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

func runSuggest(app *App, out io.Writer, input string, jsonOutput bool) error {
	list := suggest.Compute(input, true, app.History.Snapshot(), app.Config.Suggest.Limit)

	if jsonOutput {
		if list == nil {
			list = []history.Record{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Fprintf(out, "No suggestions for %q.\n", strings.TrimSpace(input))
		return nil
	}
	printRecords(out, list)
	return nil
}
