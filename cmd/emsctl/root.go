package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Algoraver22/employee-hr-platform/internal/client"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const baseURLEnv = "EMS_BASE_URL"

type globalOptions struct {
	BaseURL string
	Timeout time.Duration
	Verbose bool
}

func (o *globalOptions) client() (*client.Client, error) {
	if strings.TrimSpace(o.BaseURL) == "" {
		return nil, fmt.Errorf("--base-url or %s is required", baseURLEnv)
	}

	logger := zap.NewNop()
	if o.Verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		logger = l
	}
	return client.New(o.BaseURL, client.WithLogger(logger)), nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "emsctl",
		Short:         "Manage employee records through the employee API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := os.Getenv(baseURLEnv)
	if defaultURL == "" {
		defaultURL = "http://localhost:8080/api"
	}
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "base-url", defaultURL, "API base URL (env "+baseURLEnv+")")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "overall request timeout")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log requests to stderr")

	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newAddCmd(opts))
	cmd.AddCommand(newEditCmd(opts))
	cmd.AddCommand(newDeleteCmd(opts))
	cmd.AddCommand(newStatsCmd(opts))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
