package rate

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nurpe/haulops-billing/internal/model"
)

func mustEqual(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func TestPrice_PerTon(t *testing.T) {
	e := entry(t, "aaaaaaaa-0000-0000-0000-000000000001", func(e *model.RateCardEntry) {
		e.PricePerTon = decPtr(t, "60")
	})

	quote, err := Price(&e, dec(t, "10"), model.UnitTon, nil, Context{})
	if err != nil {
		t.Fatal(err)
	}

	mustEqual(t, "base_amount", quote.BaseAmount, dec(t, "600"))
	mustEqual(t, "min_charge_adjustment", quote.MinChargeAdjustment, decimal.Zero)
	mustEqual(t, "total", quote.Total, dec(t, "600"))
	mustEqual(t, "unit_price", quote.UnitPrice, dec(t, "60"))
	mustEqual(t, "quantity", quote.Quantity, dec(t, "10"))
}

func TestPrice_TripIsFlat(t *testing.T) {
	e := entry(t, "aaaaaaaa-0000-0000-0000-000000000001", func(e *model.RateCardEntry) {
		e.PricePerTon = nil
		e.PricePerTrip = decPtr(t, "80")
		e.MinCharge = decPtr(t, "100")
	})

	quote, err := Price(&e, dec(t, "7"), model.UnitTrip, nil, Context{})
	if err != nil {
		t.Fatal(err)
	}

	mustEqual(t, "base_amount", quote.BaseAmount, dec(t, "80"))
	mustEqual(t, "min_charge_adjustment", quote.MinChargeAdjustment, dec(t, "20"))
	mustEqual(t, "total", quote.Total, dec(t, "100"))
	// Quantity is recorded even though TRIP pricing ignores it.
	mustEqual(t, "quantity", quote.Quantity, dec(t, "7"))
}

func TestPrice_TotalNeverBelowMinCharge(t *testing.T) {
	e := entry(t, "aaaaaaaa-0000-0000-0000-000000000001", func(e *model.RateCardEntry) {
		e.PricePerTon = decPtr(t, "12.5")
		e.MinCharge = decPtr(t, "200")
	})

	for _, qty := range []string{"0.5", "1", "8", "15.9", "16", "100"} {
		quote, err := Price(&e, dec(t, qty), model.UnitTon, nil, Context{})
		if err != nil {
			t.Fatalf("qty %s: %v", qty, err)
		}
		if quote.Total.LessThan(dec(t, "200")) {
			t.Fatalf("qty %s: total %s below min charge", qty, quote.Total)
		}
		mustEqual(t, "base+adjustment", quote.BaseAmount.Add(quote.MinChargeAdjustment), quote.Total)
	}
}

func TestPrice_SurchargesAfterFloor(t *testing.T) {
	e := entry(t, "aaaaaaaa-0000-0000-0000-000000000001", func(e *model.RateCardEntry) {
		e.PricePerTon = decPtr(t, "10")
		e.MinCharge = decPtr(t, "500")
	})
	policy := StandardPolicy{
		WaitHourlyRate: dec(t, "40"),
		NightPercent:   dec(t, "10"),
	}

	quote, err := Price(&e, dec(t, "2"), model.UnitTon, policy, Context{
		WaitHours: dec(t, "1.5"),
		IsNight:   true,
	})
	if err != nil {
		t.Fatal(err)
	}

	mustEqual(t, "base_amount", quote.BaseAmount, dec(t, "20"))
	mustEqual(t, "min_charge_adjustment", quote.MinChargeAdjustment, dec(t, "480"))
	mustEqual(t, "wait_fee", quote.WaitFee, dec(t, "60"))
	// Night percent applies to the floored amount, not the raw base.
	mustEqual(t, "night_surcharge", quote.NightSurcharge, dec(t, "50"))
	mustEqual(t, "total", quote.Total, dec(t, "610"))
}

func TestPrice_NightOnlyWhenFlagged(t *testing.T) {
	e := entry(t, "aaaaaaaa-0000-0000-0000-000000000001", func(e *model.RateCardEntry) {
		e.PricePerTon = decPtr(t, "100")
	})
	policy := StandardPolicy{NightPercent: dec(t, "25")}

	quote, err := Price(&e, dec(t, "1"), model.UnitTon, policy, Context{IsNight: false})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "night_surcharge", quote.NightSurcharge, decimal.Zero)
	mustEqual(t, "total", quote.Total, dec(t, "100"))
}

func TestPrice_RoundsHalfUp(t *testing.T) {
	e := entry(t, "aaaaaaaa-0000-0000-0000-000000000001", func(e *model.RateCardEntry) {
		e.PricePerTon = decPtr(t, "10.01")
	})

	quote, err := Price(&e, dec(t, "1.5"), model.UnitTon, nil, Context{})
	if err != nil {
		t.Fatal(err)
	}
	// 15.015 rounds up, not to even.
	mustEqual(t, "total", quote.Total, dec(t, "15.02"))
}

func TestPrice_RejectsNonPositiveQuantity(t *testing.T) {
	e := entry(t, "aaaaaaaa-0000-0000-0000-000000000001", nil)

	for _, qty := range []string{"0", "-1"} {
		_, err := Price(&e, dec(t, qty), model.UnitTon, nil, Context{})
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("qty %s: got %v, want ErrInvalidQuantity", qty, err)
		}
	}
}

func TestPrice_UnpricedUnit(t *testing.T) {
	e := entry(t, "aaaaaaaa-0000-0000-0000-000000000001", nil)

	_, err := Price(&e, dec(t, "5"), model.UnitKm, nil, Context{})
	if !errors.Is(err, ErrUnitNotPriced) {
		t.Fatalf("got %v, want ErrUnitNotPriced", err)
	}
}

func TestPrice_Idempotent(t *testing.T) {
	e := entry(t, "aaaaaaaa-0000-0000-0000-000000000001", func(e *model.RateCardEntry) {
		e.PricePerTon = decPtr(t, "33.33")
		e.MinCharge = decPtr(t, "50")
	})

	first, err := Price(&e, dec(t, "2.5"), model.UnitTon, nil, Context{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Price(&e, dec(t, "2.5"), model.UnitTon, nil, Context{})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "total", first.Total, second.Total)
	mustEqual(t, "base_amount", first.BaseAmount, second.BaseAmount)
}

func TestPrice_NegativePolicyOutputClamped(t *testing.T) {
	e := entry(t, "aaaaaaaa-0000-0000-0000-000000000001", func(e *model.RateCardEntry) {
		e.PricePerTon = decPtr(t, "100")
	})

	quote, err := Price(&e, dec(t, "1"), model.UnitTon, negativePolicy{}, Context{
		WaitHours: dec(t, "2"),
		IsNight:   true,
	})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "wait_fee", quote.WaitFee, decimal.Zero)
	mustEqual(t, "night_surcharge", quote.NightSurcharge, decimal.Zero)
	mustEqual(t, "total", quote.Total, dec(t, "100"))
}

type negativePolicy struct{}

func (negativePolicy) WaitFee(decimal.Decimal) decimal.Decimal        { return decimal.NewFromInt(-10) }
func (negativePolicy) NightSurcharge(decimal.Decimal) decimal.Decimal { return decimal.NewFromInt(-5) }
