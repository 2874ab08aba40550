package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCmd() *cobra.Command {
	var (
		filename string
		sets     []string
	)
	cmd := &cobra.Command{
		Use:   "update NAME ID [-f FILENAME] [--set path=value] [flags]",
		Short: "Replace an entity",
		Long: `Replace an entity by putting a body to its URL. The body is built the same way
as for create.

Examples:
  # Update a user from a file
  restdb update users 42 -f user.yaml

  # Change one field
  restdb update users 42 -f user.yaml --set email=ada@example.com`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := loadBody(filename, sets)
			if err != nil {
				return err
			}
			a, err := accessor(args[0])
			if err != nil {
				return err
			}
			payload, err := a.Update(cmd.Context(), args[1], body).Await(cmd.Context())
			if err != nil {
				return err
			}
			if !jsonOutput {
				okLabel.Fprintf(cmd.OutOrStdout(), "[OK] ")
				fmt.Fprintf(cmd.OutOrStdout(), "Updated: %s/%s\n", args[0], args[1])
			}
			return printPayload(cmd.OutOrStdout(), payload)
		},
	}
	cmd.Flags().StringVarP(&filename, "filename", "f", "", "YAML or JSON file with the body")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Set a body field, as path=value (repeatable)")
	return cmd
}
