/*
Package main is the entry point for the gh-repo-search CLI.

gh-repo-search searches GitHub repositories from the terminal and keeps a
local list of recent searches that doubles as live suggestions.

Usage:
  gh-repo-search [command]

Available Commands:
  search      Search GitHub repositories
  recent      List recent searches
  suggest     Show suggestions from recent searches
  tui         Start the interactive search screen
  config      Inspect or create the configuration file
  version     Show version information
  help        Help about any command

Examples:
  # Interactive screen with live suggestions
  gh-repo-search tui

  # One-shot search, every page up to 200 results
  gh-repo-search search swiftlint --all --max 200

  # Against GitHub Enterprise Server
  GITHUB_API_BASE_URL=https://ghes.example.com/api/v3 gh-repo-search search infra
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/khanglvm/gh-repo-search/internal/cli"
	"github.com/khanglvm/gh-repo-search/internal/version"
)

// Version information (set via ldflags during build)
var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

func main() {
	version.Set(buildVersion, buildCommit, buildDate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
