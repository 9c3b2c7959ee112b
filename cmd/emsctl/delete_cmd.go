package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an employee record; deleting an absent record succeeds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := global.client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), global.Timeout)
			defer cancel()

			deleted, err := c.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			if deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "deleted employee %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "employee %s was already absent\n", args[0])
			}
			return nil
		},
	}
}

func newStatsCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show headcount and salary totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := global.client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), global.Timeout)
			defer cancel()

			stats, err := c.Stats(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "employees:   %d\n", stats.TotalEmployees)
			fmt.Fprintf(w, "departments: %d\n", stats.DepartmentCount)
			for name, count := range stats.Departments {
				fmt.Fprintf(w, "  %-20s %d\n", name, count)
			}
			fmt.Fprintf(w, "total:       %s\n", stats.TotalSalary)
			fmt.Fprintf(w, "average:     %s\n", stats.AverageSalary)
			return nil
		},
	}
}
