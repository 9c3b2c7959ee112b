package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Algoraver22/employee-hr-platform/internal/client"

	"github.com/spf13/cobra"
)

func newListCmd(global *globalOptions) *cobra.Command {
	var params client.ListParams

	cmd := &cobra.Command{
		Use:   "list [--search term] [--page n] [--limit n]",
		Short: "List employees, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := global.client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), global.Timeout)
			defer cancel()

			cache := client.NewCache(c)
			if _, err := cache.Fetch(ctx, params); err != nil {
				return err
			}
			printPage(cmd.OutOrStdout(), cache.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVarP(&params.Search, "search", "s", "", "match name, email, phone or department")
	cmd.Flags().IntVar(&params.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&params.Limit, "limit", 10, "page size")

	return cmd
}

func printPage(w io.Writer, page client.ListPage) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tDEPARTMENT\tSALARY")
	for _, e := range page.Employees {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Email, e.Phone, e.Department, e.Salary)
	}
	_ = tw.Flush()

	p := page.Pagination
	fmt.Fprintf(w, "page %d/%d, %d employees\n", p.CurrentPage, p.TotalPages, p.TotalEmployees)
}
