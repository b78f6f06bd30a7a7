package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a billing report as a landscape A4 statement: header,
// one table row per job, totals.
func (g *Generator) Generate(report model.BillingReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, reportTitle(report.Party), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Party: %s", report.PartyID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s - %s", formatDate(report.PeriodStart), formatDate(report.PeriodEnd)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Date", "Job", "Unit", "Qty", "Base", "Min adj.", "Wait", "Night", "Total", "Note"}
	widths := []float64{22, 58, 14, 20, 24, 24, 20, 20, 26, 39}
	drawTableRow(pdf, g.fontName, headers, widths, true)

	for _, line := range report.Lines {
		row := []string{
			formatDate(line.Job.ScheduledDate),
			shortID(line.Job.ID.String()),
			string(line.Job.Unit),
			line.Job.BillableQty().String(),
			"", "", "", "", "", "no matching price list",
		}
		if !line.NoRate {
			quote := line.Quote
			row[2] = string(quote.Unit)
			row[3] = quote.Quantity.String()
			row[8] = formatMoney(quote.Total)
			if quote.Overridden {
				row[9] = "manual override"
			} else {
				row[4] = formatMoney(quote.BaseAmount)
				row[5] = formatMoney(quote.MinChargeAdjustment)
				row[6] = formatMoney(quote.WaitFee)
				row[7] = formatMoney(quote.NightSurcharge)
				row[9] = ""
			}
		}
		drawTableRow(pdf, g.fontName, row, widths, false)
	}

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Jobs: %d (priced: %d)", len(report.Lines), report.PricedJobCount()), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %s", formatMoney(report.TotalAmount)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func reportTitle(party model.PartyType) string {
	switch party {
	case model.PartySubcontractor:
		return "Subcontractor payment report"
	default:
		return "Customer billing report"
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i >= 3 && i <= 8 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatMoney(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
