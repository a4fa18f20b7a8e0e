package main

import (
	"context"
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/obsidianstack/launchdash/server/internal/metrics"
)

func newMetricsCmd(opts *rootOptions) *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show query counters from the server's Prometheus endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			mfs, err := metrics.Fetch(ctx, http.DefaultClient, url)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dataset: %g records, %g sites, loaded in %.3fs\n",
				metrics.SumFamily(mfs[metrics.DatasetRecords], nil),
				metrics.SumFamily(mfs[metrics.DatasetSites], nil),
				metrics.SumFamily(mfs[metrics.DatasetLoadSecs], nil),
			)
			fmt.Fprintf(out, "WebSocket clients: %g\n\n", metrics.SumFamily(mfs[metrics.WSClients], nil))

			queries := mfs[metrics.QueriesTotal]
			invalid := mfs[metrics.QueryInvalidTotal]
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TRANSPORT\tKIND\tQUERIES")
			for _, tr := range metrics.LabelValues(queries, "transport") {
				for _, kind := range metrics.LabelValues(queries, "kind") {
					n := metrics.SumFamily(queries, map[string]string{"transport": tr, "kind": kind})
					if n == 0 {
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%g\n", tr, kind, n)
				}
			}
			for _, tr := range metrics.LabelValues(invalid, "transport") {
				fmt.Fprintf(w, "%s\t%s\t%g\n", tr, "invalid", metrics.SumFamily(invalid, map[string]string{"transport": tr}))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://localhost:8050/metrics", "Prometheus endpoint of launchdash-server")
	return cmd
}
