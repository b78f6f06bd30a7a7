package rate

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/model"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrUnitNotPriced   = errors.New("entry has no price for unit")
)

// SurchargePolicy supplies the waiting-time and night-work add-ons. Both
// results are clamped to zero by the calculator, and both are added after
// the minimum-charge floor.
type SurchargePolicy interface {
	WaitFee(waitHours decimal.Decimal) decimal.Decimal
	NightSurcharge(flooredAmount decimal.Decimal) decimal.Decimal
}

// Context carries the per-job inputs the surcharge policy needs.
type Context struct {
	WaitHours decimal.Decimal
	IsNight   bool
}

// Price computes the full breakdown for a resolved entry. TRIP pricing is a
// flat amount regardless of quantity, which is still recorded on the quote.
// The minimum charge lifts base_amount to min_charge before surcharges;
// the final total is rounded half-up to 2 decimal places.
func Price(entry *model.RateCardEntry, quantity decimal.Decimal, unit model.BillingUnit, policy SurchargePolicy, ctx Context) (model.PriceQuote, error) {
	if quantity.Sign() <= 0 {
		return model.PriceQuote{}, ErrInvalidQuantity
	}
	unitPrice := entry.PriceFor(unit)
	if unitPrice == nil {
		return model.PriceQuote{}, ErrUnitNotPriced
	}

	var base decimal.Decimal
	if unit == model.UnitTrip {
		base = *unitPrice
	} else {
		base = quantity.Mul(*unitPrice)
	}

	minAdjustment := decimal.Zero
	if entry.MinCharge != nil {
		if diff := entry.MinCharge.Sub(base); diff.Sign() > 0 {
			minAdjustment = diff
		}
	}
	floored := base.Add(minAdjustment)

	waitFee := decimal.Zero
	nightSurcharge := decimal.Zero
	if policy != nil {
		waitFee = clampNonNegative(policy.WaitFee(ctx.WaitHours))
		if ctx.IsNight {
			nightSurcharge = clampNonNegative(policy.NightSurcharge(floored))
		}
	}

	total := floored.Add(waitFee).Add(nightSurcharge).Round(2)

	return model.PriceQuote{
		Unit:                unit,
		UnitPrice:           *unitPrice,
		Quantity:            quantity,
		BaseAmount:          base,
		MinChargeAdjustment: minAdjustment,
		WaitFee:             waitFee,
		NightSurcharge:      nightSurcharge,
		Total:               total,
		PriceListID:         entry.ID,
		PartyType:           entry.PartyType,
		IsMaterialSpecific:  entry.MaterialID != nil,
		IsRouteSpecific:     entry.IsRouteSpecific(),
	}, nil
}

func clampNonNegative(value decimal.Decimal) decimal.Decimal {
	if value.Sign() < 0 {
		return decimal.Zero
	}
	return value
}
