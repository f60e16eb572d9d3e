package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vitalvas/faux/mock"
)

func routesCmd() *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the routes declared in fixture files",
		Long: `List the routes declared in fixture files, in registration
order, after validation.

Examples:
  mockserver routes -f books.yaml -f authors.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := mock.New(nil)
			if err := applyFixtures(srv, files); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMETHOD\tPATTERN")
			for _, r := range srv.Routes() {
				pattern := r.Pattern.Template()
				if r.Pattern.IsRaw() {
					pattern = "/" + r.Pattern.String() + "/"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Method, pattern)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringArrayVarP(&files, "fixtures", "f", nil, "Fixture file (repeatable)")
	_ = cmd.MarkFlagRequired("fixtures")

	return cmd
}
