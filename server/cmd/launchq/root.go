package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/obsidianstack/launchdash/server/internal/rpc"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootOptions struct {
	addr    string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "launchq",
		Short: "Query a launchdash-server from the terminal",
		Long:  "launchq asks a running launchdash-server for launch site summaries\nand payload/outcome correlations over its gRPC query service.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		Version:      version,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.addr, "addr", "localhost:50051", "gRPC address of launchdash-server")
	f.DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-command deadline")

	cmd.AddCommand(newSitesCmd(opts))
	cmd.AddCommand(newSummaryCmd(opts))
	cmd.AddCommand(newCorrelateCmd(opts))
	cmd.AddCommand(newMetricsCmd(opts))
	return cmd
}

// withClient dials the server, runs fn and closes the connection.
func (o *rootOptions) withClient(cmd *cobra.Command, fn func(ctx context.Context, c *rpc.Client) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	c, err := rpc.Dial(ctx, o.addr)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}
