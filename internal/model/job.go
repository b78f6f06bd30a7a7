package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type JobStatus string

const (
	JobStatusPlanned        JobStatus = "PLANNED"
	JobStatusAssigned       JobStatus = "ASSIGNED"
	JobStatusEnroutePickup  JobStatus = "ENROUTE_PICKUP"
	JobStatusLoaded         JobStatus = "LOADED"
	JobStatusEnrouteDropoff JobStatus = "ENROUTE_DROPOFF"
	JobStatusDelivered      JobStatus = "DELIVERED"
	JobStatusClosed         JobStatus = "CLOSED"
	JobStatusCanceled       JobStatus = "CANCELED"
)

func ParseJobStatus(raw string) (JobStatus, bool) {
	switch JobStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case JobStatusPlanned:
		return JobStatusPlanned, true
	case JobStatusAssigned:
		return JobStatusAssigned, true
	case JobStatusEnroutePickup:
		return JobStatusEnroutePickup, true
	case JobStatusLoaded:
		return JobStatusLoaded, true
	case JobStatusEnrouteDropoff:
		return JobStatusEnrouteDropoff, true
	case JobStatusDelivered:
		return JobStatusDelivered, true
	case JobStatusClosed:
		return JobStatusClosed, true
	case JobStatusCanceled:
		return JobStatusCanceled, true
	default:
		return "", false
	}
}

// Job is a transport order. Assignment fields obey the exclusivity rule:
// either TruckID/DriverID are set, or SubcontractorID is, or all are nil.
// IsSubcontractor is denormalized and must always agree with SubcontractorID.
type Job struct {
	ID                       uuid.UUID
	OrgID                    uuid.UUID
	CustomerID               uuid.UUID
	MaterialID               uuid.UUID
	FromSiteID               *uuid.UUID
	ToSiteID                 *uuid.UUID
	ScheduledDate            time.Time
	PlannedQty               decimal.Decimal
	ActualQty                *decimal.Decimal
	Unit                     BillingUnit
	TruckID                  *uuid.UUID
	DriverID                 *uuid.UUID
	SubcontractorID          *uuid.UUID
	IsSubcontractor          bool
	SubcontractorBillingUnit *BillingUnit
	Status                   JobStatus
	ManualOverrideTotal      *decimal.Decimal
	ManualOverrideReason     *string
	WaitHours                decimal.Decimal
	IsNight                  bool
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// BillableQty prefers the measured quantity over the planned one.
func (j *Job) BillableQty() decimal.Decimal {
	if j.ActualQty != nil {
		return *j.ActualQty
	}
	return j.PlannedQty
}

// SubcontractorUnit resolves the unit used for subcontractor costing:
// the explicit override when present, the job's own unit otherwise.
func (j *Job) SubcontractorUnit() BillingUnit {
	if j.SubcontractorBillingUnit != nil {
		return *j.SubcontractorBillingUnit
	}
	return j.Unit
}

// JobStatusEvent is one row of the append-only transition log.
type JobStatusEvent struct {
	ID         uuid.UUID
	JobID      uuid.UUID
	FromStatus JobStatus
	ToStatus   JobStatus
	Lat        *float64
	Lon        *float64
	ActorID    uuid.UUID
	OccurredAt time.Time
}
