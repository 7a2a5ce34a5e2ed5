package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/gh-repo-search/internal/config"
	"github.com/khanglvm/gh-repo-search/internal/version"
)

// annotationInteractive marks commands that own the terminal.
const annotationInteractive = "interactive"

// annotationNoApp marks commands that run without opening the database.
const annotationNoApp = "no-app"

// rootOptions carries persistent flag values and the App built from them.
type rootOptions struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	cfgErr error
	app    *App
}

// NewRootCmd creates the gh-repo-search root command with every subcommand.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Search GitHub repositories from the terminal",
		Long: `gh-repo-search searches GitHub repositories and remembers what you searched.

Recent searches are kept in a local SQLite database and offered as live
suggestions while you type in the interactive screen.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.teardown()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default ~/.gh-repo-search.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(NewSearchCmd(opts))
	rootCmd.AddCommand(NewRecentCmd(opts))
	rootCmd.AddCommand(NewSuggestCmd(opts))
	rootCmd.AddCommand(NewTUICmd(opts))
	rootCmd.AddCommand(NewConfigCmd(opts))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if cmd.Annotations[annotationNoApp] != "" {
		// these commands decide for themselves whether a bad config matters
		o.cfg, o.cfgErr = cfg, err
		return nil
	}
	if err != nil {
		return err
	}
	o.cfg = cfg

	logger, closer, err := newLogger(cfg, o.logLevel, cmd.Annotations[annotationInteractive] != "")
	if err != nil {
		return err
	}

	o.app = NewApp(cmd.Context(), cfg, logger)
	o.app.logCloser = closer
	return nil
}

func (o *rootOptions) teardown() error {
	if o.app == nil {
		return nil
	}
	err := o.app.Close()
	o.app = nil
	if err != nil {
		return fmt.Errorf("failed to close: %w", err)
	}
	return nil
}
