package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	var (
		filename string
		sets     []string
	)
	cmd := &cobra.Command{
		Use:   "create NAME [-f FILENAME] [--set path=value] [flags]",
		Short: "Create an entity in a collection",
		Long: `Create an entity by posting a body to the collection. The body is read from a
YAML or JSON file and edited with --set. {{ .ENV.NAME }} placeholders in the
file are replaced from the environment or a .env file next to it.

Examples:
  # Create a user from a file
  restdb create users -f user.yaml

  # Create a user from flags only
  restdb create users --set name=ada --set age=36`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := loadBody(filename, sets)
			if err != nil {
				return err
			}
			a, err := accessor(args[0])
			if err != nil {
				return err
			}
			payload, err := a.Create(cmd.Context(), body).Await(cmd.Context())
			if err != nil {
				return err
			}
			if !jsonOutput {
				okLabel.Fprintf(cmd.OutOrStdout(), "[OK] ")
				fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", args[0])
			}
			return printPayload(cmd.OutOrStdout(), payload)
		},
	}
	cmd.Flags().StringVarP(&filename, "filename", "f", "", "YAML or JSON file with the body")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Set a body field, as path=value (repeatable)")
	return cmd
}
