package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print the CLI version",
		Args:              cobra.NoArgs,
		PersistentPreRunE: skipResolve,
		RunE: func(_ *cobra.Command, _ []string) error {
			if a.wantsJSON() {
				return printJSON(a.deps.stdout, map[string]string{
					"version": version,
					"commit":  commit,
				})
			}
			_, _ = fmt.Fprintf(a.deps.stdout, "athenaq version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}
