package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Algoraver22/employee-hr-platform/internal/client"

	"github.com/spf13/cobra"
)

type formOptions struct {
	Name       string
	Email      string
	Phone      string
	Department string
	Salary     string
	Image      string
}

func (o *formOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Name, "name", "", "full name")
	cmd.Flags().StringVar(&o.Email, "email", "", "email address")
	cmd.Flags().StringVar(&o.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&o.Department, "department", "", "department")
	cmd.Flags().StringVar(&o.Salary, "salary", "", "salary, e.g. 5000.00")
	cmd.Flags().StringVar(&o.Image, "image", "", "path to a profile image")
}

// apply copies the flags that were set on cmd into the form, so edit keeps
// the record's current value for any flag left out.
func (o *formOptions) apply(cmd *cobra.Command, form *client.FormController) error {
	values := map[string]string{
		"name":       o.Name,
		"email":      o.Email,
		"phone":      o.Phone,
		"department": o.Department,
		"salary":     o.Salary,
	}
	for field, value := range values {
		if !cmd.Flags().Changed(field) {
			continue
		}
		if err := form.SetField(field, value); err != nil {
			return err
		}
	}
	return nil
}

func newAddCmd(global *globalOptions) *cobra.Command {
	var opts formOptions

	cmd := &cobra.Command{
		Use:   "add --name n --email e --phone p --department d --salary s [--image file]",
		Short: "Create an employee record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForm(cmd, global, &opts, func(_ context.Context, _ *client.Client, form *client.FormController) error {
				return form.OpenCreate()
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newEditCmd(global *globalOptions) *cobra.Command {
	var opts formOptions

	cmd := &cobra.Command{
		Use:   "edit <id> [--name n] [--email e] [--phone p] [--department d] [--salary s] [--image file]",
		Short: "Update an employee record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForm(cmd, global, &opts, func(ctx context.Context, c *client.Client, form *client.FormController) error {
				record, err := c.Get(ctx, args[0])
				if err != nil {
					if client.IsNotFound(err) {
						return fmt.Errorf("employee %s not found", args[0])
					}
					return err
				}
				return form.OpenEdit(record)
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func runForm(
	cmd *cobra.Command,
	global *globalOptions,
	opts *formOptions,
	open func(ctx context.Context, c *client.Client, form *client.FormController) error,
) error {
	c, err := global.client()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), global.Timeout)
	defer cancel()

	cache := client.NewCache(c)
	form := client.NewFormController(c, cache)

	if err := open(ctx, c, form); err != nil {
		return err
	}
	if err := opts.apply(cmd, form); err != nil {
		return err
	}

	if opts.Image != "" {
		f, err := os.Open(opts.Image)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := form.SetProfileImage(filepath.Base(opts.Image), f); err != nil {
			return err
		}
	}

	out, err := form.Submit(ctx)
	if err != nil {
		var vErr *client.ValidationError
		if errors.As(err, &vErr) {
			return fmt.Errorf("cannot submit: %w", vErr)
		}
		return err
	}
	if out.Err != nil {
		return fmt.Errorf("%s failed: %w", out.Mode, out.Err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%sd employee %s\n", out.Mode, out.Record.ID)
	if out.RefreshErr == nil {
		printPage(w, cache.Snapshot())
	}
	return nil
}
