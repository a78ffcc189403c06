package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// A4 portrait page geometry in millimetres.
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	pageMargin   = 10.0
	titleHeight  = 8.0
	panelPadding = 3.0
)

// assemblePDF lays the panels out top to bottom on a single page, each
// image scaled to fit its slot with the aspect ratio kept.
func assemblePDF(panels [3]Panel, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Loan Report", true)
	pdf.SetCreator("loanbook", true)
	pdf.SetCreationDate(generatedAt)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.AddPage()

	contentWidth := pageWidth - 2*pageMargin
	slotHeight := (pageHeight - 2*pageMargin) / float64(len(panels))
	maxImageHeight := slotHeight - titleHeight - panelPadding

	for i, panel := range panels {
		top := pageMargin + float64(i)*slotHeight

		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(pageMargin, top)
		pdf.CellFormat(contentWidth, titleHeight, panel.Title, "", 0, "C", false, 0, "")

		name := fmt.Sprintf("panel-%d", i)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(panel.PNG))
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("register %s image: %w", panel.Kind, err)
		}
		if info == nil || info.Width() <= 0 || info.Height() <= 0 {
			return nil, fmt.Errorf("register %s image: empty image", panel.Kind)
		}

		w, h := fit(info.Width(), info.Height(), contentWidth, maxImageHeight)
		x := pageMargin + (contentWidth-w)/2
		y := top + titleHeight
		pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales (w, h) to the largest size inside (maxW, maxH).
func fit(w, h, maxW, maxH float64) (float64, float64) {
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}
