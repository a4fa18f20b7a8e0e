package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/obsidianstack/launchdash/server/internal/api"
	"github.com/obsidianstack/launchdash/server/internal/rpc"
)

func newSitesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List launch sites and the payload slider range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c *rpc.Client) error {
				o, err := c.Options(ctx)
				if err != nil {
					return fmt.Errorf("options: %w", err)
				}
				out := cmd.OutOrStdout()
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VALUE\tLABEL")
				for _, s := range o.Sites {
					fmt.Fprintf(w, "%s\t%s\n", s.Value, s.Label)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(out, "\nPayload slider: %g..%g kg, step %g, default [%g, %g]\n",
					o.Slider.Min, o.Slider.Max, o.Slider.Step, o.Slider.Value[0], o.Slider.Value[1])
				return nil
			})
		},
	}
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var site string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show success totals by site, or one site's outcome breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c *rpc.Client) error {
				s, err := c.Summarize(ctx, site)
				if err != nil {
					return fmt.Errorf("summarize: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, s.Title)
				if len(s.Slices) == 0 {
					fmt.Fprintln(out, "(no launches)")
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "LABEL\tCOUNT")
				for _, sl := range s.Slices {
					fmt.Fprintf(w, "%s\t%d\n", sl.Label, sl.Value)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&site, "site", "ALL", "launch site, or ALL")
	return cmd
}

func newCorrelateCmd(opts *rootOptions) *cobra.Command {
	var (
		site      string
		low, high float64
	)
	cmd := &cobra.Command{
		Use:   "correlate",
		Short: "List launches in a payload range with their outcome and booster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := api.QueryRequest{Site: site}
			// Unset bounds take the dataset's range on the server.
			if cmd.Flags().Changed("low") {
				req.PayloadLow = &low
			}
			if cmd.Flags().Changed("high") {
				req.PayloadHigh = &high
			}
			return opts.withClient(cmd, func(ctx context.Context, c *rpc.Client) error {
				corr, err := c.Correlate(ctx, req)
				if err != nil {
					return fmt.Errorf("correlate: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, corr.Title)
				fmt.Fprintf(out, "Payload range: [%g, %g] kg\n\n", corr.PayloadLow, corr.PayloadHigh)
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "SITE\tPAYLOAD (KG)\tOUTCOME\tBOOSTER")
				for _, p := range corr.Points {
					fmt.Fprintf(w, "%s\t%g\t%s\t%s\n", p.Site, p.PayloadMassKg, p.OutcomeLabel, p.BoosterVersionCategory)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%d launches\n", corr.Count)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&site, "site", "ALL", "launch site, or ALL")
	f.Float64Var(&low, "low", 0, "lower payload bound in kg (default: dataset minimum)")
	f.Float64Var(&high, "high", 0, "upper payload bound in kg (default: dataset maximum)")
	return cmd
}
