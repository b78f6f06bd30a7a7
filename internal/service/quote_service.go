package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/haulops-billing/internal/job"
	"github.com/nurpe/haulops-billing/internal/model"
	"github.com/nurpe/haulops-billing/internal/rate"
)

// RateCatalog is the read side of the rate-card store.
type RateCatalog interface {
	ListCandidates(ctx context.Context, partyType model.PartyType, partyID uuid.UUID, asOf time.Time) ([]model.RateCardEntry, error)
}

// JobStore is the slice of the job repository the services depend on.
type JobStore interface {
	GetJob(ctx context.Context, id uuid.UUID) (*model.Job, error)
	UpdateAssignment(ctx context.Context, j *model.Job) error
	UpdateOverride(ctx context.Context, jobID uuid.UUID, total *decimal.Decimal, reason *string) error
	AdvanceStatus(ctx context.Context, event model.JobStatusEvent) error
	ListStatusEvents(ctx context.Context, jobID uuid.UUID) ([]model.JobStatusEvent, error)
	ListJobsForCustomer(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]model.Job, error)
	ListJobsForSubcontractor(ctx context.Context, subcontractorID uuid.UUID, from, to time.Time) ([]model.Job, error)
}

// QuoteService is the single pricing path shared by job editing, job detail
// and reporting, so the three screens can never drift apart.
type QuoteService struct {
	rates  RateCatalog
	jobs   JobStore
	policy rate.SurchargePolicy
}

func NewQuoteService(rates RateCatalog, jobs JobStore, policy rate.SurchargePolicy) *QuoteService {
	return &QuoteService{rates: rates, jobs: jobs, policy: policy}
}

type QuoteInput struct {
	PartyType  model.PartyType
	PartyID    uuid.UUID
	MaterialID uuid.UUID
	FromSiteID *uuid.UUID
	ToSiteID   *uuid.UUID
	Unit       model.BillingUnit
	Quantity   decimal.Decimal
	WaitHours  decimal.Decimal
	IsNight    bool
	AsOf       time.Time
}

// Quote resolves and prices an ad-hoc request.
func (s *QuoteService) Quote(ctx context.Context, input QuoteInput) (*model.PriceQuote, error) {
	if input.PartyID == uuid.Nil {
		return nil, fmt.Errorf("%w: party id is required", ErrInvalidInput)
	}
	if !input.Unit.Valid() {
		return nil, fmt.Errorf("%w: unknown billing unit", ErrInvalidInput)
	}
	if input.Quantity.Sign() <= 0 {
		return nil, ErrInvalidQuantity
	}
	if input.AsOf.IsZero() {
		input.AsOf = time.Now().UTC()
	}
	asOf := dateOnly(input.AsOf)

	candidates, err := s.rates.ListCandidates(ctx, input.PartyType, input.PartyID, asOf)
	if err != nil {
		return nil, err
	}

	entry, ok := rate.Resolve(candidates, rate.LookupKey{
		PartyType:  input.PartyType,
		PartyID:    input.PartyID,
		MaterialID: input.MaterialID,
		FromSiteID: input.FromSiteID,
		ToSiteID:   input.ToSiteID,
		Unit:       input.Unit,
		AsOf:       asOf,
	})
	if !ok {
		return nil, ErrNoRate
	}

	quote, err := rate.Price(entry, input.Quantity, input.Unit, s.policy, rate.Context{
		WaitHours: input.WaitHours,
		IsNight:   input.IsNight,
	})
	if err != nil {
		if errors.Is(err, rate.ErrInvalidQuantity) {
			return nil, ErrInvalidQuantity
		}
		return nil, err
	}
	return &quote, nil
}

// QuoteJob prices a stored job against one of its two catalogs: the
// customer catalog for revenue or the subcontractor catalog for cost. The
// manual override gate is applied last, so an operator-fixed total always
// wins for billing reads.
func (s *QuoteService) QuoteJob(ctx context.Context, jobID uuid.UUID, party model.PartyType) (*model.PriceQuote, error) {
	j, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.QuoteForJob(ctx, j, party)
}

// QuoteForJob is QuoteJob for an already-loaded job row; the report builder
// uses it to avoid re-fetching every line.
func (s *QuoteService) QuoteForJob(ctx context.Context, j *model.Job, party model.PartyType) (*model.PriceQuote, error) {
	partyID, unit, err := job.BillingParty(j, party)
	if err != nil {
		return nil, err
	}

	computed, err := s.Quote(ctx, QuoteInput{
		PartyType:  party,
		PartyID:    partyID,
		MaterialID: j.MaterialID,
		FromSiteID: j.FromSiteID,
		ToSiteID:   j.ToSiteID,
		Unit:       unit,
		Quantity:   j.BillableQty(),
		WaitHours:  j.WaitHours,
		IsNight:    j.IsNight,
		AsOf:       j.ScheduledDate,
	})
	if err != nil {
		// An operator-fixed total stands on its own even when no price
		// list matches the job anymore.
		if errors.Is(err, ErrNoRate) && j.ManualOverrideTotal != nil {
			bare := rate.EffectiveQuote(j, model.PriceQuote{
				Unit:     unit,
				Quantity: j.BillableQty(),
			})
			return &bare, nil
		}
		return nil, err
	}

	effective := rate.EffectiveQuote(j, *computed)
	return &effective, nil
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
