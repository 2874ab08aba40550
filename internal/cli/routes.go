package cli

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tansive/restdb/internal/request"
)

type routeInfo struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	ContentType string   `json:"content_type,omitempty"`
	Operations  []string `json:"operations"`
}

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List registered routes and their enabled operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := active.client
			builder := request.NewBuilder(client.Settings().Snapshot())

			var rows []routeInfo
			for _, name := range client.Settings().Names() {
				route, ok := client.Settings().Route(name)
				if !ok {
					continue
				}
				d := builder.Build(http.MethodGet, route)
				rows = append(rows, routeInfo{
					Name:        name,
					URL:         d.URL,
					ContentType: d.Headers[request.HeaderContentType],
					Operations:  client.Resource(name).Operations(),
				})
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				printJSON(out, rows)
				return nil
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No routes registered")
				return nil
			}
			for _, r := range rows {
				fmt.Fprintf(out, "%-20s %-48s %s\n", r.Name, r.URL, strings.Join(r.Operations, ","))
			}
			return nil
		},
	}
}
