package model

import "strings"

// BillingUnit is the quantity basis a price is expressed in.
type BillingUnit string

const (
	UnitTon  BillingUnit = "TON"
	UnitM3   BillingUnit = "M3"
	UnitTrip BillingUnit = "TRIP"
	UnitKm   BillingUnit = "KM"
)

func ParseBillingUnit(raw string) (BillingUnit, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TON":
		return UnitTon, true
	case "M3":
		return UnitM3, true
	case "TRIP":
		return UnitTrip, true
	case "KM":
		return UnitKm, true
	default:
		return "", false
	}
}

func (u BillingUnit) Valid() bool {
	switch u {
	case UnitTon, UnitM3, UnitTrip, UnitKm:
		return true
	default:
		return false
	}
}
