// Package charts renders the report charts to PNG.
//
// Bar charts use gonum/plot; the status pie uses go-chart. Both render
// all-zero data without error so an empty book still yields a report.
package charts

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"math"

	"github.com/dustin/go-humanize"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"loanbook/internal/core"
)

var (
	financedColor = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	newLoansColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	closedColor   = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	emptyPieColor = drawing.ColorFromHex("d3d3d3")
)

// Renderer draws the three report charts. The zero value is not usable;
// call New.
type Renderer struct {
	barWidth  vg.Length
	barHeight vg.Length
	pieSize   int
}

func New() *Renderer {
	return &Renderer{
		barWidth:  8 * vg.Inch,
		barHeight: 4 * vg.Inch,
		pieSize:   600,
	}
}

// FinancedBar draws one bar per month, height the amount financed.
func (r *Renderer) FinancedBar(ctx context.Context, title string, financed [12]core.Money) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := make(plotter.Values, len(financed))
	for i, m := range financed {
		values[i] = m.Float()
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Total Amount ($)"
	p.Y.Tick.Marker = currencyTicker{}
	p.Add(plotter.NewGrid())

	bars, err := plotter.NewBarChart(values, vg.Points(22))
	if err != nil {
		return nil, fmt.Errorf("financed bars: %w", err)
	}
	bars.Color = financedColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(shortMonthNames()...)
	clampY(p)

	return r.encode(p)
}

// ActivityStackedBar draws new loans per month with closed loans stacked on top.
func (r *Renderer) ActivityStackedBar(ctx context.Context, title string, series core.MonthlySeries) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	newValues := make(plotter.Values, len(series))
	closedValues := make(plotter.Values, len(series))
	for i, m := range series {
		newValues[i] = float64(m.NewLoans)
		closedValues[i] = float64(m.ClosedLoans)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Number of Loans"
	p.Y.Tick.Marker = integerTicker{}

	newBars, err := plotter.NewBarChart(newValues, vg.Points(22))
	if err != nil {
		return nil, fmt.Errorf("new loan bars: %w", err)
	}
	newBars.Color = newLoansColor
	newBars.LineStyle.Width = 0

	closedBars, err := plotter.NewBarChart(closedValues, vg.Points(22))
	if err != nil {
		return nil, fmt.Errorf("closed loan bars: %w", err)
	}
	closedBars.Color = closedColor
	closedBars.LineStyle.Width = 0
	closedBars.StackOn(newBars)

	p.Add(newBars, closedBars)
	p.Legend.Add("New Loans", newBars)
	p.Legend.Add("Closed Loans", closedBars)
	p.Legend.Top = true
	p.NominalX(shortMonthNames()...)
	clampY(p)

	return r.encode(p)
}

// StatusPie draws one slice per status labelled with its share. With no
// shares at all a single neutral slice is drawn.
func (r *Renderer) StatusPie(ctx context.Context, title string, shares []core.StatusShare) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := make([]chart.Value, 0, len(shares))
	for _, s := range shares {
		if s.Count <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: float64(s.Count),
			Label: ShareLabel(s),
		})
	}
	if len(values) == 0 {
		values = append(values, chart.Value{
			Value: 1,
			Label: "No loans",
			Style: chart.Style{FillColor: emptyPieColor},
		})
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  r.pieSize,
		Height: r.pieSize,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie: %w", err)
	}
	return buf.Bytes(), nil
}

// ShareLabel formats a pie slice label, e.g. "Active 62.5%".
func ShareLabel(s core.StatusShare) string {
	name := string(s.Status)
	if name == "" {
		name = "Unknown"
	}
	return fmt.Sprintf("%s %.1f%%", name, s.Share*100)
}

func (r *Renderer) encode(p *plot.Plot) ([]byte, error) {
	c := vgimg.PngCanvas{Canvas: vgimg.New(r.barWidth, r.barHeight)}
	p.Draw(draw.New(c))

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// clampY keeps the zero line at the bottom and gives all-zero data a
// visible axis.
func clampY(p *plot.Plot) {
	p.Y.Min = math.Min(p.Y.Min, 0)
	if p.Y.Max <= 0 {
		p.Y.Max = 1
	}
}

func shortMonthNames() []string {
	out := make([]string, len(core.MonthNames))
	for i, name := range core.MonthNames {
		out[i] = name[:3]
	}
	return out
}

// currencyTicker labels the default ticks as dollar amounts.
type currencyTicker struct{}

func (currencyTicker) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = FormatCurrency(ticks[i].Value)
		}
	}
	return ticks
}

// integerTicker drops fractional major ticks; loan counts are whole.
type integerTicker struct{}

func (integerTicker) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	out := make([]plot.Tick, 0, len(ticks))
	majors := 0
	for _, t := range ticks {
		if t.Label != "" && t.Value != math.Trunc(t.Value) {
			t.Label = ""
		}
		if t.Label != "" {
			majors++
		}
		out = append(out, t)
	}
	if majors < 2 {
		return ticks
	}
	return out
}

// FormatCurrency renders v as whole dollars with thousands separators.
func FormatCurrency(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.", -v)
	}
	return "$" + humanize.FormatFloat("#,###.", v)
}
