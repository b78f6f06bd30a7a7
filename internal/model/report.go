package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingReportLine pairs one job with its effective quote. NoRate marks
// jobs for which no price list matched; they stay on the report unpriced.
type BillingReportLine struct {
	Job    Job
	Quote  PriceQuote
	NoRate bool
}

// BillingReport is a period statement for one party: revenue lines for a
// customer, payment lines for a subcontractor.
type BillingReport struct {
	Party       PartyType
	PartyID     uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
	Lines       []BillingReportLine
	TotalAmount decimal.Decimal
}

func (r *BillingReport) PricedJobCount() int {
	count := 0
	for _, line := range r.Lines {
		if !line.NoRate {
			count++
		}
	}
	return count
}
