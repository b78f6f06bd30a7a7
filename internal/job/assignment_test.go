package job

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nurpe/haulops-billing/internal/model"
)

func fleetJob(t *testing.T) *model.Job {
	t.Helper()
	truckID := uuid.New()
	driverID := uuid.New()
	return &model.Job{
		ID:       uuid.New(),
		TruckID:  &truckID,
		DriverID: &driverID,
		Unit:     model.UnitTon,
	}
}

func TestApply_SubcontractorClearsFleet(t *testing.T) {
	j := fleetJob(t)
	subID := uuid.New()

	Apply(j, SubcontractorAssignment{SubcontractorID: subID})

	if j.TruckID != nil || j.DriverID != nil {
		t.Fatal("truck and driver must be cleared")
	}
	if j.SubcontractorID == nil || *j.SubcontractorID != subID {
		t.Fatal("subcontractor must be set")
	}
	if !j.IsSubcontractor {
		t.Fatal("is_subcontractor must be true")
	}
	if err := Validate(j); err != nil {
		t.Fatal(err)
	}
}

func TestApply_FleetClearsSubcontractor(t *testing.T) {
	subID := uuid.New()
	unit := model.UnitTrip
	j := &model.Job{
		ID:                       uuid.New(),
		SubcontractorID:          &subID,
		IsSubcontractor:          true,
		SubcontractorBillingUnit: &unit,
		Unit:                     model.UnitTon,
	}
	truckID := uuid.New()
	driverID := uuid.New()

	Apply(j, FleetAssignment{TruckID: truckID, DriverID: driverID})

	if j.SubcontractorID != nil || j.SubcontractorBillingUnit != nil {
		t.Fatal("subcontractor side must be cleared")
	}
	if j.IsSubcontractor {
		t.Fatal("is_subcontractor must be false")
	}
	if j.TruckID == nil || j.DriverID == nil {
		t.Fatal("fleet side must be set")
	}
	if err := Validate(j); err != nil {
		t.Fatal(err)
	}
}

func TestApply_Unassign(t *testing.T) {
	j := fleetJob(t)

	Apply(j, Unassigned{})

	if j.TruckID != nil || j.DriverID != nil || j.SubcontractorID != nil || j.IsSubcontractor {
		t.Fatal("all assignment fields must be cleared")
	}
}

func TestFromJob_RejectsBothSides(t *testing.T) {
	j := fleetJob(t)
	subID := uuid.New()
	j.SubcontractorID = &subID

	_, err := FromJob(j)
	if !errors.Is(err, ErrAssignmentConflict) {
		t.Fatalf("got %v, want ErrAssignmentConflict", err)
	}
}

func TestFromJob_RejectsStaleFlag(t *testing.T) {
	j := fleetJob(t)
	j.IsSubcontractor = true

	_, err := FromJob(j)
	if !errors.Is(err, ErrAssignmentConflict) {
		t.Fatalf("got %v, want ErrAssignmentConflict", err)
	}
}

func TestFromJob_TruckWithoutDriver(t *testing.T) {
	truckID := uuid.New()
	j := &model.Job{TruckID: &truckID}

	_, err := FromJob(j)
	if !errors.Is(err, ErrAssignmentConflict) {
		t.Fatalf("got %v, want ErrAssignmentConflict", err)
	}
}

func TestBillingParty_CustomerUsesJobUnit(t *testing.T) {
	customerID := uuid.New()
	j := &model.Job{CustomerID: customerID, Unit: model.UnitM3}

	partyID, unit, err := BillingParty(j, model.PartyCustomer)
	if err != nil {
		t.Fatal(err)
	}
	if partyID != customerID || unit != model.UnitM3 {
		t.Fatalf("got (%s, %s), want customer/%s", partyID, unit, model.UnitM3)
	}
}

func TestBillingParty_SubcontractorUnitOverride(t *testing.T) {
	subID := uuid.New()
	tripUnit := model.UnitTrip
	j := &model.Job{
		CustomerID:               uuid.New(),
		SubcontractorID:          &subID,
		IsSubcontractor:          true,
		SubcontractorBillingUnit: &tripUnit,
		Unit:                     model.UnitTon,
	}

	partyID, unit, err := BillingParty(j, model.PartySubcontractor)
	if err != nil {
		t.Fatal(err)
	}
	if partyID != subID {
		t.Fatal("party must be the subcontractor")
	}
	// Subcontractor is paid per trip while the customer is billed per ton.
	if unit != model.UnitTrip {
		t.Fatalf("unit = %s, want TRIP", unit)
	}
}

func TestBillingParty_SubcontractorUnitFallback(t *testing.T) {
	subID := uuid.New()
	j := &model.Job{
		CustomerID:      uuid.New(),
		SubcontractorID: &subID,
		IsSubcontractor: true,
		Unit:            model.UnitKm,
	}

	_, unit, err := BillingParty(j, model.PartySubcontractor)
	if err != nil {
		t.Fatal(err)
	}
	if unit != model.UnitKm {
		t.Fatalf("unit = %s, want job's own unit", unit)
	}
}

func TestBillingParty_SubcontractorOnFleetJob(t *testing.T) {
	j := fleetJob(t)

	_, _, err := BillingParty(j, model.PartySubcontractor)
	if !errors.Is(err, ErrUnassigned) {
		t.Fatalf("got %v, want ErrUnassigned", err)
	}
}
