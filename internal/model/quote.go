package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceQuote is a computed pricing breakdown. It is transient: recomputed on
// demand from the current job and rate catalog, never persisted.
type PriceQuote struct {
	Unit                BillingUnit
	UnitPrice           decimal.Decimal
	Quantity            decimal.Decimal
	BaseAmount          decimal.Decimal
	MinChargeAdjustment decimal.Decimal
	WaitFee             decimal.Decimal
	NightSurcharge      decimal.Decimal
	Total               decimal.Decimal

	// Provenance of the resolved rate-card entry.
	PriceListID        uuid.UUID
	PartyType          PartyType
	IsMaterialSpecific bool
	IsRouteSpecific    bool

	// Overridden marks a quote whose total was replaced by an operator;
	// the computed breakdown is retained for comparison only.
	Overridden     bool
	OverrideReason string
}
