package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/khanglvm/gh-repo-search/internal/config"
)

// NewConfigCmd creates the 'config' command group.
func NewConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(newConfigInitCmd(root))
	cmd.AddCommand(newConfigShowCmd(root))
	return cmd
}

func newConfigInitCmd(root *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default settings",
		Example: `  gh-repo-search config init
  gh-repo-search --config ./gh-repo-search.yaml config init --force`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd.OutOrStdout(), root.configPath, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func runConfigInit(out io.Writer, path string, force bool) error {
	if path == "" {
		path = os.Getenv(config.ConfigPathEnv)
	}
	if path == "" {
		p, err := config.GetDefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.NewConfig()
	dbPath, err := config.GetDefaultDBPath()
	if err != nil {
		return err
	}
	cfg.Storage.Path = dbPath

	if err := config.Save(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Wrote %s\n", path)
	return nil
}

func newConfigShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the effective configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if root.cfgErr != nil {
				return root.cfgErr
			}
			return runConfigShow(cmd.OutOrStdout(), root.cfg)
		},
	}
}

func runConfigShow(out io.Writer, cfg *config.Config) error {
	shown := *cfg
	if shown.GitHub.Token != "" {
		shown.GitHub.Token = "********"
	}

	data, err := config.Marshal(&shown)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
