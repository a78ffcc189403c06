package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"loanbook/internal/cli"
	"loanbook/internal/report"
	"loanbook/internal/report/charts"
)

func reportCmd() *cobra.Command {
	var (
		out      string
		debugDir string
		asOf     string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the loan report PDF to a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := snapshot(cmd.Context(), asOf)
			if err != nil {
				return err
			}

			opts := []report.Option{report.WithLogger(logger)}
			if debugDir != "" {
				opts = append(opts, report.WithDebugDir(debugDir))
			}
			bundle, err := report.NewComposer(charts.New(), opts...).Compose(cmd.Context(), snap)
			if err != nil {
				return fmt.Errorf("compose report: %w", err)
			}

			if err := os.WriteFile(out, bundle.PDF, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %s (%s, %d loans)",
				out, humanize.Bytes(uint64(len(bundle.PDF))), snap.BookSize)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "loan_report.pdf", "output PDF path")
	cmd.Flags().StringVar(&debugDir, "debug-dir", "", "also write each chart PNG into this directory")
	cmd.Flags().StringVar(&asOf, "as-of", "", "evaluate as of this date (YYYY-MM-DD) instead of today")
	return cmd
}
