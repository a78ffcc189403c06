package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"loanbook/internal/cli"
	"loanbook/internal/core"
	"loanbook/internal/metrics"
)

func metricsCmd() *cobra.Command {
	var (
		asOf   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print the loan book metrics",
		Long: `Load the configured loan source and print the same figures the
/loan_metrics endpoint returns, either as a table or as JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := snapshot(cmd.Context(), asOf)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !asJSON {
				fmt.Fprint(out, cli.RenderSnapshot(snap))
				return nil
			}
			return writeMetricsJSON(out, snap)
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "evaluate as of this date (YYYY-MM-DD) instead of today")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// metricsJSON is the /loan_metrics payload plus the evaluation date.
type metricsJSON struct {
	AsOf string `json:"as_of"`
	metrics.LoanMetrics
}

func writeMetricsJSON(w io.Writer, snap core.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(metricsJSON{AsOf: snap.AsOf.String(), LoanMetrics: metrics.NewLoanMetrics(snap)})
}
