package job

import (
	"errors"
	"fmt"

	"github.com/nurpe/haulops-billing/internal/model"
)

var (
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrAssignmentConflict = errors.New("job cannot be assigned to both fleet and subcontractor")
	ErrUnassigned         = errors.New("job has no assignment")
)

// forward is the strict delivery chain; statuses advance one step at a time.
var forward = map[model.JobStatus]model.JobStatus{
	model.JobStatusPlanned:        model.JobStatusAssigned,
	model.JobStatusAssigned:       model.JobStatusEnroutePickup,
	model.JobStatusEnroutePickup:  model.JobStatusLoaded,
	model.JobStatusLoaded:         model.JobStatusEnrouteDropoff,
	model.JobStatusEnrouteDropoff: model.JobStatusDelivered,
	model.JobStatusDelivered:      model.JobStatusClosed,
}

// NextStatus returns the single legal forward step from current. ok is false
// for terminal statuses. This is the same lookup the UI uses to label its
// one "next action" button.
func NextStatus(current model.JobStatus) (model.JobStatus, bool) {
	next, ok := forward[current]
	return next, ok
}

func IsTerminal(status model.JobStatus) bool {
	return status == model.JobStatusClosed || status == model.JobStatusCanceled
}

// CanTransition reports whether target is reachable from current in one
// step: the next forward status, or a cancel from any non-terminal status.
func CanTransition(current, target model.JobStatus) bool {
	if target == model.JobStatusCanceled {
		return !IsTerminal(current)
	}
	next, ok := forward[current]
	return ok && next == target
}

// PlanTransition validates a requested status change against the state
// machine and the assignment precondition for entering ASSIGNED. It has no
// side effects; the guarded update happens at the persistence boundary.
func PlanTransition(j *model.Job, target model.JobStatus) error {
	if !CanTransition(j.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, j.Status, target)
	}
	if target == model.JobStatusAssigned {
		assignment, err := FromJob(j)
		if err != nil {
			return err
		}
		if _, ok := assignment.(Unassigned); ok {
			return fmt.Errorf("%w: assign a truck and driver or a subcontractor first", ErrUnassigned)
		}
	}
	return nil
}
