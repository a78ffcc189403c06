package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"loanbook/internal/core"
)

// RenderSnapshot lays a metrics snapshot out for the terminal: headline
// figures, the month table and any degenerate-input warnings.
func RenderSnapshot(snap core.Snapshot) string {
	var b strings.Builder

	b.WriteString(FormatTitle(fmt.Sprintf("Loan book as of %s", snap.AsOf)))
	b.WriteString("\n")

	headline := lipgloss.JoinVertical(lipgloss.Left,
		row("Loans in book", humanize.Comma(int64(snap.BookSize))),
		row("Active loans", humanize.Comma(int64(snap.TotalActive))),
		row("Completed loans", humanize.Comma(int64(snap.TotalCompleted))),
		row("Outstanding w/ interest", formatAmount(snap.TotalOutstanding)),
	)
	b.WriteString(BoxStyle.Render(headline))
	b.WriteString("\n\n")

	b.WriteString(renderMonthTable(snap))

	if len(snap.StatusDistribution) > 0 {
		b.WriteString("\n")
		parts := make([]string, 0, len(snap.StatusDistribution))
		for _, s := range snap.StatusDistribution {
			name := string(s.Status)
			if name == "" {
				name = "Unknown"
			}
			parts = append(parts, fmt.Sprintf("%s %d (%.1f%%)", name, s.Count, s.Share*100))
		}
		b.WriteString(SubtleStyle.Render("Statuses: " + strings.Join(parts, ", ")))
		b.WriteString("\n")
	}

	for _, w := range snap.Warnings {
		b.WriteString(FormatWarning(fmt.Sprintf("loan %s: %s (%s)", w.LoanID, w.Kind, w.Detail)))
		b.WriteString("\n")
	}

	return b.String()
}

func renderMonthTable(snap core.Snapshot) string {
	var b strings.Builder
	header := fmt.Sprintf("%-10s %6s %7s %14s", "Month", "New", "Closed", "Financed")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")
	for i, m := range snap.Monthly {
		fmt.Fprintf(&b, "%-10s %6d %7d %14s\n", m.Name, m.NewLoans, m.ClosedLoans, formatAmount(snap.MonthlyFinanced[i].Float()))
	}
	return b.String()
}

func row(label, value string) string {
	return LabelStyle.Render(label) + value
}

// formatAmount prints a dollar amount with thousands separators and cents.
func formatAmount(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}
