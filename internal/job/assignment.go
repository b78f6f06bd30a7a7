package job

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nurpe/haulops-billing/internal/model"
)

// Assignment is the validated binding of a job to whoever hauls it. Exactly
// one variant applies at a time, which makes the truck-XOR-subcontractor
// rule structural instead of a check repeated at call sites.
type Assignment interface {
	isAssignment()
}

// FleetAssignment binds a job to a company truck and its driver.
type FleetAssignment struct {
	TruckID  uuid.UUID
	DriverID uuid.UUID
}

// SubcontractorAssignment hands the job to an external hauler. BillingUnit,
// when set, overrides the job's own unit for subcontractor costing only.
type SubcontractorAssignment struct {
	SubcontractorID uuid.UUID
	BillingUnit     *model.BillingUnit
}

// Unassigned is a job not yet dispatched.
type Unassigned struct{}

func (FleetAssignment) isAssignment()         {}
func (SubcontractorAssignment) isAssignment() {}
func (Unassigned) isAssignment()              {}

// FromJob reads the assignment off a job's raw columns, rejecting rows where
// both sides are populated or the denormalized flag disagrees.
func FromJob(j *model.Job) (Assignment, error) {
	hasTruck := j.TruckID != nil
	hasSub := j.SubcontractorID != nil

	switch {
	case hasTruck && hasSub:
		return nil, fmt.Errorf("%w: truck %s and subcontractor %s both set", ErrAssignmentConflict, *j.TruckID, *j.SubcontractorID)
	case hasSub:
		if !j.IsSubcontractor {
			return nil, fmt.Errorf("%w: is_subcontractor flag is stale", ErrAssignmentConflict)
		}
		return SubcontractorAssignment{
			SubcontractorID: *j.SubcontractorID,
			BillingUnit:     j.SubcontractorBillingUnit,
		}, nil
	case hasTruck:
		if j.IsSubcontractor {
			return nil, fmt.Errorf("%w: is_subcontractor flag is stale", ErrAssignmentConflict)
		}
		if j.DriverID == nil {
			return nil, fmt.Errorf("%w: truck without driver", ErrAssignmentConflict)
		}
		return FleetAssignment{TruckID: *j.TruckID, DriverID: *j.DriverID}, nil
	default:
		if j.IsSubcontractor {
			return nil, fmt.Errorf("%w: is_subcontractor flag is stale", ErrAssignmentConflict)
		}
		return Unassigned{}, nil
	}
}

// Validate checks the exclusivity invariant without building the value.
func Validate(j *model.Job) error {
	_, err := FromJob(j)
	return err
}

// Apply writes an assignment onto the job, clearing the other side so the
// swap is a single consistent mutation. Persistence must store all affected
// columns in one update.
func Apply(j *model.Job, assignment Assignment) {
	switch a := assignment.(type) {
	case FleetAssignment:
		j.TruckID = &a.TruckID
		j.DriverID = &a.DriverID
		j.SubcontractorID = nil
		j.SubcontractorBillingUnit = nil
		j.IsSubcontractor = false
	case SubcontractorAssignment:
		j.TruckID = nil
		j.DriverID = nil
		j.SubcontractorID = &a.SubcontractorID
		j.SubcontractorBillingUnit = a.BillingUnit
		j.IsSubcontractor = true
	case Unassigned:
		j.TruckID = nil
		j.DriverID = nil
		j.SubcontractorID = nil
		j.SubcontractorBillingUnit = nil
		j.IsSubcontractor = false
	}
}

// BillingParty derives which catalog prices the job and in what unit:
// the customer catalog in the job's own unit for revenue, or the
// subcontractor catalog in the subcontractor unit for cost.
func BillingParty(j *model.Job, party model.PartyType) (uuid.UUID, model.BillingUnit, error) {
	switch party {
	case model.PartyCustomer:
		return j.CustomerID, j.Unit, nil
	case model.PartySubcontractor:
		assignment, err := FromJob(j)
		if err != nil {
			return uuid.Nil, "", err
		}
		sub, ok := assignment.(SubcontractorAssignment)
		if !ok {
			return uuid.Nil, "", fmt.Errorf("%w: no subcontractor on job", ErrUnassigned)
		}
		return sub.SubcontractorID, j.SubcontractorUnit(), nil
	default:
		return uuid.Nil, "", fmt.Errorf("unknown party type %q", party)
	}
}
