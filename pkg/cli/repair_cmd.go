package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRepairCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repair TABLE",
		Short: "Load new partitions of a table (MSCK REPAIR TABLE)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, _, err := a.session(ctx)
			if err != nil {
				return err
			}
			stop := a.startSpinner(fmt.Sprintf("Repairing %s", args[0]))
			err = session.RepairTable(ctx, args[0])
			stop()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.deps.stdout, "Repaired table %s in database %s\n", args[0], session.Database())
			return nil
		},
	}
}
