package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nurpe/haulops-billing/internal/model"
)

func TestQuote_MaterialSpecificEntryWins(t *testing.T) {
	customerID := uuid.New()
	materialID := uuid.New()
	catalog := &fakeCatalog{entries: []model.RateCardEntry{
		{
			ID:          uuid.New(),
			PartyType:   model.PartyCustomer,
			PartyID:     customerID,
			ValidFrom:   day(t, "2026-01-01"),
			PricePerTon: decPtr(t, "50"),
			IsActive:    true,
		},
		{
			ID:          uuid.New(),
			PartyType:   model.PartyCustomer,
			PartyID:     customerID,
			MaterialID:  &materialID,
			ValidFrom:   day(t, "2026-01-01"),
			PricePerTon: decPtr(t, "60"),
			IsActive:    true,
		},
	}}
	svc := NewQuoteService(catalog, newFakeJobStore(), noPolicy())

	quote, err := svc.Quote(context.Background(), QuoteInput{
		PartyType:  model.PartyCustomer,
		PartyID:    customerID,
		MaterialID: materialID,
		Unit:       model.UnitTon,
		Quantity:   dec(t, "10"),
		AsOf:       day(t, "2026-02-01"),
	})
	if err != nil {
		t.Fatal(err)
	}

	mustEqual(t, "base_amount", quote.BaseAmount, dec(t, "600"))
	mustEqual(t, "total", quote.Total, dec(t, "600"))
	if !quote.IsMaterialSpecific {
		t.Fatal("material-specific entry must win")
	}
}

func TestQuote_NoRate(t *testing.T) {
	svc := NewQuoteService(&fakeCatalog{}, newFakeJobStore(), noPolicy())

	_, err := svc.Quote(context.Background(), QuoteInput{
		PartyType:  model.PartyCustomer,
		PartyID:    uuid.New(),
		MaterialID: uuid.New(),
		Unit:       model.UnitTon,
		Quantity:   dec(t, "1"),
		AsOf:       day(t, "2026-02-01"),
	})
	if !errors.Is(err, ErrNoRate) {
		t.Fatalf("got %v, want ErrNoRate", err)
	}
}

func TestQuote_InvalidQuantity(t *testing.T) {
	svc := NewQuoteService(&fakeCatalog{}, newFakeJobStore(), noPolicy())

	_, err := svc.Quote(context.Background(), QuoteInput{
		PartyType:  model.PartyCustomer,
		PartyID:    uuid.New(),
		MaterialID: uuid.New(),
		Unit:       model.UnitTon,
		Quantity:   dec(t, "0"),
		AsOf:       day(t, "2026-02-01"),
	})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("got %v, want ErrInvalidQuantity", err)
	}
}

func TestQuoteJob_OverrideWinsForBilling(t *testing.T) {
	customerID := uuid.New()
	materialID := uuid.New()
	catalog := &fakeCatalog{entries: []model.RateCardEntry{{
		ID:          uuid.New(),
		PartyType:   model.PartyCustomer,
		PartyID:     customerID,
		ValidFrom:   day(t, "2026-01-01"),
		PricePerTon: decPtr(t, "35"),
		IsActive:    true,
	}}}
	j := &model.Job{
		ID:                  uuid.New(),
		CustomerID:          customerID,
		MaterialID:          materialID,
		ScheduledDate:       day(t, "2026-02-01"),
		PlannedQty:          dec(t, "10"),
		Unit:                model.UnitTon,
		Status:              model.JobStatusPlanned,
		ManualOverrideTotal: decPtr(t, "500"),
	}
	svc := NewQuoteService(catalog, newFakeJobStore(j), noPolicy())

	quote, err := svc.QuoteJob(context.Background(), j.ID, model.PartyCustomer)
	if err != nil {
		t.Fatal(err)
	}

	// Computed 350 is kept for comparison, billing sees 500.
	mustEqual(t, "total", quote.Total, dec(t, "500"))
	mustEqual(t, "base_amount", quote.BaseAmount, dec(t, "350"))
	if !quote.Overridden {
		t.Fatal("quote must be marked overridden")
	}
}

func TestQuoteJob_OverrideWithoutRate(t *testing.T) {
	j := &model.Job{
		ID:                  uuid.New(),
		CustomerID:          uuid.New(),
		MaterialID:          uuid.New(),
		ScheduledDate:       day(t, "2026-02-01"),
		PlannedQty:          dec(t, "10"),
		Unit:                model.UnitTon,
		Status:              model.JobStatusPlanned,
		ManualOverrideTotal: decPtr(t, "500"),
	}
	svc := NewQuoteService(&fakeCatalog{}, newFakeJobStore(j), noPolicy())

	quote, err := svc.QuoteJob(context.Background(), j.ID, model.PartyCustomer)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "total", quote.Total, dec(t, "500"))
	if !quote.Overridden {
		t.Fatal("quote must be marked overridden")
	}
}

func TestQuoteJob_SubcontractorUnitAndCatalog(t *testing.T) {
	customerID := uuid.New()
	subID := uuid.New()
	materialID := uuid.New()
	tripUnit := model.UnitTrip
	catalog := &fakeCatalog{entries: []model.RateCardEntry{
		{
			// Customer is billed per ton.
			ID:          uuid.New(),
			PartyType:   model.PartyCustomer,
			PartyID:     customerID,
			ValidFrom:   day(t, "2026-01-01"),
			PricePerTon: decPtr(t, "60"),
			IsActive:    true,
		},
		{
			// Subcontractor is paid per trip.
			ID:           uuid.New(),
			PartyType:    model.PartySubcontractor,
			PartyID:      subID,
			ValidFrom:    day(t, "2026-01-01"),
			PricePerTrip: decPtr(t, "80"),
			IsActive:     true,
		},
	}}
	j := &model.Job{
		ID:                       uuid.New(),
		CustomerID:               customerID,
		MaterialID:               materialID,
		ScheduledDate:            day(t, "2026-02-01"),
		PlannedQty:               dec(t, "10"),
		Unit:                     model.UnitTon,
		SubcontractorID:          &subID,
		IsSubcontractor:          true,
		SubcontractorBillingUnit: &tripUnit,
		Status:                   model.JobStatusAssigned,
	}
	svc := NewQuoteService(catalog, newFakeJobStore(j), noPolicy())

	revenue, err := svc.QuoteJob(context.Background(), j.ID, model.PartyCustomer)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "revenue total", revenue.Total, dec(t, "600"))

	cost, err := svc.QuoteJob(context.Background(), j.ID, model.PartySubcontractor)
	if err != nil {
		t.Fatal(err)
	}
	if cost.Unit != model.UnitTrip {
		t.Fatalf("cost unit = %s, want TRIP", cost.Unit)
	}
	mustEqual(t, "cost total", cost.Total, dec(t, "80"))
}

func TestQuoteJob_ActualQtyPreferred(t *testing.T) {
	customerID := uuid.New()
	catalog := &fakeCatalog{entries: []model.RateCardEntry{{
		ID:          uuid.New(),
		PartyType:   model.PartyCustomer,
		PartyID:     customerID,
		ValidFrom:   day(t, "2026-01-01"),
		PricePerTon: decPtr(t, "10"),
		IsActive:    true,
	}}}
	j := &model.Job{
		ID:            uuid.New(),
		CustomerID:    customerID,
		MaterialID:    uuid.New(),
		ScheduledDate: day(t, "2026-02-01"),
		PlannedQty:    dec(t, "10"),
		ActualQty:     decPtr(t, "12.5"),
		Unit:          model.UnitTon,
		Status:        model.JobStatusDelivered,
	}
	svc := NewQuoteService(catalog, newFakeJobStore(j), noPolicy())

	quote, err := svc.QuoteJob(context.Background(), j.ID, model.PartyCustomer)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "total", quote.Total, dec(t, "125"))
}

func TestQuoteJob_NotFound(t *testing.T) {
	svc := NewQuoteService(&fakeCatalog{}, newFakeJobStore(), noPolicy())

	_, err := svc.QuoteJob(context.Background(), uuid.New(), model.PartyCustomer)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
