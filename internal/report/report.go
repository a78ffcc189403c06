// Package report composes the loan report: three charts laid out on one
// PDF page in a fixed order.
package report

import (
	"context"
	"time"

	"loanbook/internal/core"
)

// PanelKind identifies one of the three report charts.
type PanelKind int

const (
	PanelStatusDistribution PanelKind = iota
	PanelLoanActivity
	PanelAmountFinanced
)

// PanelOrder is the order panels appear in a Bundle and in the PDF.
var PanelOrder = [3]PanelKind{PanelStatusDistribution, PanelLoanActivity, PanelAmountFinanced}

type panelSpec struct {
	title      string // heading above the image in the PDF
	chartTitle string // title drawn inside the image
	filename   string // debug PNG name
}

var panelSpecs = map[PanelKind]panelSpec{
	PanelStatusDistribution: {
		title:      "Loan Status Distribution (Pie Chart)",
		chartTitle: "Loan Status Distribution",
		filename:   "loan_status_pie_chart.png",
	},
	PanelLoanActivity: {
		title:      "Month-wise Loan Data (Bar Chart)",
		chartTitle: "Month-wise Loan Data",
		filename:   "month_wise_loan_data_bar_chart.png",
	},
	PanelAmountFinanced: {
		title:      "Month-wise Total Amount Financed for Loans",
		chartTitle: "Month-wise Total Amount Financed for Loans (Current Year)",
		filename:   "monthly_amount_financed_bar_chart.png",
	},
}

func (k PanelKind) String() string {
	switch k {
	case PanelStatusDistribution:
		return "status_distribution"
	case PanelLoanActivity:
		return "loan_activity"
	case PanelAmountFinanced:
		return "amount_financed"
	default:
		return "unknown"
	}
}

// Title is the panel heading.
func (k PanelKind) Title() string { return panelSpecs[k].title }

// Filename is the name used when the panel PNG is written to disk.
func (k PanelKind) Filename() string { return panelSpecs[k].filename }

// Panel is one titled chart image.
type Panel struct {
	Kind  PanelKind
	Title string
	PNG   []byte
}

// Bundle is a finished report.
type Bundle struct {
	ID          string
	GeneratedAt time.Time
	Panels      [3]Panel
	PDF         []byte
}

// ChartRenderer draws the report charts as PNG images.
type ChartRenderer interface {
	StatusPie(ctx context.Context, title string, shares []core.StatusShare) ([]byte, error)
	ActivityStackedBar(ctx context.Context, title string, series core.MonthlySeries) ([]byte, error)
	FinancedBar(ctx context.Context, title string, financed [12]core.Money) ([]byte, error)
}
