package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartyType distinguishes the two price lists: what a customer is billed
// versus what a subcontractor is paid.
type PartyType string

const (
	PartyCustomer      PartyType = "CUSTOMER"
	PartySubcontractor PartyType = "SUBCONTRACTOR"
)

// RateCardEntry is one scoped price rule. Nil MaterialID means the entry
// applies to all materials; nil FromSiteID/ToSiteID mean it applies to all
// routes. ValidTo nil means the window is open-ended.
type RateCardEntry struct {
	ID           uuid.UUID
	PartyType    PartyType
	PartyID      uuid.UUID
	MaterialID   *uuid.UUID
	FromSiteID   *uuid.UUID
	ToSiteID     *uuid.UUID
	ValidFrom    time.Time
	ValidTo      *time.Time
	PricePerTon  *decimal.Decimal
	PricePerM3   *decimal.Decimal
	PricePerTrip *decimal.Decimal
	PricePerKm   *decimal.Decimal
	MinCharge    *decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
}

// PriceFor returns the per-unit price for the given billing unit, or nil
// when the entry does not price that unit.
func (e *RateCardEntry) PriceFor(unit BillingUnit) *decimal.Decimal {
	switch unit {
	case UnitTon:
		return e.PricePerTon
	case UnitM3:
		return e.PricePerM3
	case UnitTrip:
		return e.PricePerTrip
	case UnitKm:
		return e.PricePerKm
	default:
		return nil
	}
}

// Usable reports whether the entry defines at least one per-unit price.
func (e *RateCardEntry) Usable() bool {
	return e.PricePerTon != nil || e.PricePerM3 != nil || e.PricePerTrip != nil || e.PricePerKm != nil
}

// IsRouteSpecific reports whether the entry pins at least one end of the route.
func (e *RateCardEntry) IsRouteSpecific() bool {
	return e.FromSiteID != nil || e.ToSiteID != nil
}

// CoversDate reports whether asOf falls inside the validity window.
func (e *RateCardEntry) CoversDate(asOf time.Time) bool {
	if asOf.Before(e.ValidFrom) {
		return false
	}
	if e.ValidTo != nil && asOf.After(*e.ValidTo) {
		return false
	}
	return true
}
