package rate

import "github.com/shopspring/decimal"

// StandardPolicy is the default surcharge schedule: waiting time at an
// hourly rate, night work as a percentage of the floored amount.
type StandardPolicy struct {
	WaitHourlyRate decimal.Decimal
	NightPercent   decimal.Decimal
}

func (p StandardPolicy) WaitFee(waitHours decimal.Decimal) decimal.Decimal {
	if waitHours.Sign() <= 0 {
		return decimal.Zero
	}
	return waitHours.Mul(p.WaitHourlyRate)
}

func (p StandardPolicy) NightSurcharge(flooredAmount decimal.Decimal) decimal.Decimal {
	if p.NightPercent.Sign() <= 0 {
		return decimal.Zero
	}
	return flooredAmount.Mul(p.NightPercent).Div(decimal.NewFromInt(100))
}
