package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khanglvm/gh-repo-search/internal/version"
)

// NewVersionCmd creates the 'version' command
func NewVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Long:        `Display the current version, commit hash, and build date.`,
		Annotations: map[string]string{annotationNoApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runVersion(cmd.OutOrStdout()); err != nil {
				return err
			}
			if !check {
				return nil
			}
			return runVersionCheck(cmd.Context(), cmd.OutOrStdout(), version.NewChecker("https://api.github.com"))
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")
	return cmd
}

func runVersion(out io.Writer) error {
	v, c, d := version.GetVersionComponents()
	fmt.Fprintf(out, "Version:  %s\n", v)
	fmt.Fprintf(out, "Commit:   %s\n", c)
	fmt.Fprintf(out, "Built:    %s\n", d)
	return nil
}

func runVersionCheck(ctx context.Context, out io.Writer, checker *version.Checker) error {
	latest, err := checker.Latest(ctx)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}

	if version.IsNewer(version.Version, latest) {
		fmt.Fprintf(out, "\nA newer release is available: v%s\n", latest)
		fmt.Fprintf(out, "https://github.com/%s/%s/releases/latest\n", version.RepoOwner, version.RepoName)
		return nil
	}
	fmt.Fprintln(out, "\nYou are on the latest release.")
	return nil
}
