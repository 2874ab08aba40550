package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME ID [flags]",
		Short: "Delete an entity by id",
		Long: `Delete an entity by id.

Examples:
  # Delete a user
  restdb delete users 42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := accessor(args[0])
			if err != nil {
				return err
			}
			if _, err := a.Delete(cmd.Context(), args[1]).Await(cmd.Context()); err != nil {
				return err
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]int{"result": 1})
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully deleted %s/%s\n", args[0], args[1])
			return nil
		},
	}
}
