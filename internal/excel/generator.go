package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/haulops-billing/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders a billing report as a workbook: a summary sheet plus a
// jobs sheet with one priced line per job.
func (g *Generator) Generate(report model.BillingReport) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, report); err != nil {
		return nil, err
	}

	jobsSheet := "Jobs"
	if _, err := file.NewSheet(jobsSheet); err != nil {
		return nil, err
	}
	if err := g.writeJobs(file, jobsSheet, report); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.BillingReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Report type")
	set("B1", partyLabel(report.Party))
	set("A2", "Party")
	set("B2", report.PartyID.String())
	set("A3", "Period start")
	set("B3", formatDate(report.PeriodStart))
	set("A4", "Period end")
	set("B4", formatDate(report.PeriodEnd))
	set("A5", "Jobs")
	set("B5", len(report.Lines))
	set("A6", "Priced jobs")
	set("B6", report.PricedJobCount())
	set("A7", "Total amount")
	set("B7", formatMoney(report.TotalAmount))

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 40)
	return nil
}

func (g *Generator) writeJobs(file *excelize.File, sheet string, report model.BillingReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Date",
		"Job",
		"Status",
		"Unit",
		"Quantity",
		"Unit price",
		"Base amount",
		"Min charge adj.",
		"Wait fee",
		"Night surcharge",
		"Total",
		"Note",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, line := range report.Lines {
		row := i + 2
		set(fmt.Sprintf("A%d", row), formatDate(line.Job.ScheduledDate))
		set(fmt.Sprintf("B%d", row), line.Job.ID.String())
		set(fmt.Sprintf("C%d", row), string(line.Job.Status))

		if line.NoRate {
			set(fmt.Sprintf("D%d", row), string(line.Job.Unit))
			set(fmt.Sprintf("E%d", row), line.Job.BillableQty().String())
			set(fmt.Sprintf("L%d", row), "no matching price list")
			continue
		}

		quote := line.Quote
		set(fmt.Sprintf("D%d", row), string(quote.Unit))
		set(fmt.Sprintf("E%d", row), quote.Quantity.String())
		set(fmt.Sprintf("K%d", row), formatMoney(quote.Total))

		if quote.Overridden {
			note := "manual override"
			if quote.OverrideReason != "" {
				note = fmt.Sprintf("manual override: %s", quote.OverrideReason)
			}
			set(fmt.Sprintf("L%d", row), note)
			continue
		}

		set(fmt.Sprintf("F%d", row), formatMoney(quote.UnitPrice))
		set(fmt.Sprintf("G%d", row), formatMoney(quote.BaseAmount))
		set(fmt.Sprintf("H%d", row), formatMoney(quote.MinChargeAdjustment))
		set(fmt.Sprintf("I%d", row), formatMoney(quote.WaitFee))
		set(fmt.Sprintf("J%d", row), formatMoney(quote.NightSurcharge))
	}

	_ = file.SetColWidth(sheet, "A", "A", 12)
	_ = file.SetColWidth(sheet, "B", "B", 38)
	_ = file.SetColWidth(sheet, "C", "C", 18)
	_ = file.SetColWidth(sheet, "D", "J", 14)
	_ = file.SetColWidth(sheet, "K", "K", 14)
	_ = file.SetColWidth(sheet, "L", "L", 32)
	return nil
}

func partyLabel(party model.PartyType) string {
	switch party {
	case model.PartyCustomer:
		return "Customer billing"
	case model.PartySubcontractor:
		return "Subcontractor payments"
	default:
		return "Billing"
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatMoney(value decimal.Decimal) string {
	return value.StringFixed(2)
}
