package cli

import (
	"github.com/spf13/cobra"
	"github.com/tansive/restdb/pkg/restdb"
)

func newGetCmd() *cobra.Command {
	var selector string
	cmd := &cobra.Command{
		Use:   "get NAME [ID] [flags]",
		Short: "Get a collection, or one entity by id",
		Long: `Get a collection, or one entity when an id is given.

Examples:
  # Get every user
  restdb get users

  # Get one user and print only its name
  restdb get users 42 --select name

  # Get a user in JSON format
  restdb get users 42 -j`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := accessor(args[0])
			if err != nil {
				return err
			}

			var f *restdb.Future
			if len(args) == 2 {
				f = a.GetByID(cmd.Context(), args[1])
			} else {
				f = a.Get(cmd.Context())
			}
			payload, err := f.Await(cmd.Context())
			if err != nil {
				return err
			}
			payload, err = selectPath(payload, selector)
			if err != nil {
				return err
			}
			return printPayload(cmd.OutOrStdout(), payload)
		},
	}
	cmd.Flags().StringVarP(&selector, "select", "s", "", "gjson path to print instead of the whole response")
	return cmd
}

// accessor resolves name against the active session.
func accessor(name string) (*restdb.Accessor, error) {
	a := active.client.Resource(name)
	if a == nil {
		return nil, restdb.ErrNoResourceName
	}
	return a, nil
}
