package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/model"
)

// ExcelGenerator renders a billing report as an xlsx workbook.
type ExcelGenerator interface {
	Generate(report model.BillingReport) ([]byte, error)
}

// PDFGenerator renders a billing report as a PDF document.
type PDFGenerator interface {
	Generate(report model.BillingReport) ([]byte, error)
}

type ReportFormat string

const (
	FormatXLSX ReportFormat = "xlsx"
	FormatPDF  ReportFormat = "pdf"
)

// ReportService builds period statements: revenue per customer, payments
// per subcontractor. Every line goes through the same quote path the job
// screens use, so the numbers cannot drift.
type ReportService struct {
	jobs   JobStore
	quotes *QuoteService
	excel  ExcelGenerator
	pdf    PDFGenerator
}

func NewReportService(jobs JobStore, quotes *QuoteService, excel ExcelGenerator, pdf PDFGenerator) *ReportService {
	return &ReportService{jobs: jobs, quotes: quotes, excel: excel, pdf: pdf}
}

type GenerateReportInput struct {
	Party       model.PartyType
	PartyID     uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
	Format      ReportFormat
	Principal   model.Principal
}

type GenerateReportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

func (s *ReportService) Generate(ctx context.Context, input GenerateReportInput) (*GenerateReportResult, error) {
	if input.Principal.IsDriver() {
		return nil, ErrPermissionDenied
	}
	if input.PartyID == uuid.Nil {
		return nil, fmt.Errorf("%w: party_id is required", ErrInvalidInput)
	}
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}

	periodStart := dateOnly(input.PeriodStart)
	periodEnd := dateOnly(input.PeriodEnd)
	if periodStart.After(periodEnd) {
		return nil, fmt.Errorf("%w: period_start must be before or equal to period_end", ErrInvalidInput)
	}
	endExclusive := periodEnd.Add(24 * time.Hour)

	report, err := s.Build(ctx, input.Party, input.PartyID, periodStart, endExclusive)
	if err != nil {
		return nil, err
	}
	report.PeriodEnd = periodEnd

	var content []byte
	var contentType string
	switch input.Format {
	case FormatPDF:
		content, err = s.pdf.Generate(*report)
		contentType = "application/pdf"
	case FormatXLSX, "":
		content, err = s.excel.Generate(*report)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidInput, input.Format)
	}
	if err != nil {
		return nil, err
	}

	return &GenerateReportResult{
		FileName:    buildFileName(*report, input.Format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

// Build assembles the report lines. Jobs without a matching price list stay
// on the report flagged unpriced instead of failing the whole statement.
func (s *ReportService) Build(ctx context.Context, party model.PartyType, partyID uuid.UUID, from, toExclusive time.Time) (*model.BillingReport, error) {
	var jobs []model.Job
	var err error
	switch party {
	case model.PartyCustomer:
		jobs, err = s.jobs.ListJobsForCustomer(ctx, partyID, from, toExclusive)
	case model.PartySubcontractor:
		jobs, err = s.jobs.ListJobsForSubcontractor(ctx, partyID, from, toExclusive)
	default:
		return nil, fmt.Errorf("%w: unknown party type %q", ErrInvalidInput, party)
	}
	if err != nil {
		return nil, err
	}

	report := &model.BillingReport{
		Party:       party,
		PartyID:     partyID,
		PeriodStart: from,
		PeriodEnd:   toExclusive,
		TotalAmount: decimal.Zero,
	}

	for i := range jobs {
		j := jobs[i]
		quote, err := s.quotes.QuoteForJob(ctx, &j, party)
		if err != nil {
			if errors.Is(err, ErrNoRate) {
				report.Lines = append(report.Lines, model.BillingReportLine{Job: j, NoRate: true})
				continue
			}
			return nil, err
		}
		report.Lines = append(report.Lines, model.BillingReportLine{Job: j, Quote: *quote})
		report.TotalAmount = report.TotalAmount.Add(quote.Total)
	}
	return report, nil
}

func buildFileName(report model.BillingReport, format ReportFormat) string {
	ext := "xlsx"
	if format == FormatPDF {
		ext = "pdf"
	}
	party := strings.ToLower(string(report.Party))
	period := fmt.Sprintf("%s-%s", report.PeriodStart.Format("20060102"), report.PeriodEnd.Format("20060102"))
	return fmt.Sprintf("billing-%s-%s-%s.%s", party, report.PartyID, period, ext)
}
