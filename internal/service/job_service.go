package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/haulops-billing/internal/job"
	"github.com/nurpe/haulops-billing/internal/model"
	"github.com/nurpe/haulops-billing/internal/repository"
)

type JobService struct {
	jobs JobStore
}

func NewJobService(jobs JobStore) *JobService {
	return &JobService{jobs: jobs}
}

// PatchJobInput carries the fields of a partial job update. Assignment is
// nil when the patch does not touch assignment; SetOverride distinguishes
// "clear the override" (true with nil values) from "leave it alone".
type PatchJobInput struct {
	Assignment     job.Assignment
	SetOverride    bool
	OverrideTotal  *decimal.Decimal
	OverrideReason *string
	Status         *model.JobStatus
	Lat            *float64
	Lon            *float64
	Principal      model.Principal
}

// PatchJob applies a partial update: assignment swap, override set/clear,
// and a single-step status change, each validated before anything is
// written. Order matters: an assignment arriving together with a move to
// ASSIGNED must land first so the precondition holds.
func (s *JobService) PatchJob(ctx context.Context, jobID uuid.UUID, input PatchJobInput) (*model.Job, error) {
	if input.Principal.IsDriver() {
		return nil, fmt.Errorf("%w: drivers may only advance status", ErrPermissionDenied)
	}

	current, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.Assignment != nil {
		if job.IsTerminal(current.Status) {
			return nil, fmt.Errorf("%w: job is %s", ErrIllegalTransition, current.Status)
		}
		job.Apply(current, input.Assignment)
		if err := job.Validate(current); err != nil {
			return nil, err
		}
		if err := s.jobs.UpdateAssignment(ctx, current); err != nil {
			return nil, err
		}
	}

	if input.SetOverride {
		if input.OverrideTotal != nil && input.OverrideTotal.Sign() < 0 {
			return nil, fmt.Errorf("%w: override total must not be negative", ErrInvalidInput)
		}
		if input.OverrideTotal == nil && input.OverrideReason != nil {
			return nil, fmt.Errorf("%w: override reason without total", ErrInvalidInput)
		}
		if err := s.jobs.UpdateOverride(ctx, jobID, input.OverrideTotal, input.OverrideReason); err != nil {
			return nil, err
		}
		current.ManualOverrideTotal = input.OverrideTotal
		current.ManualOverrideReason = input.OverrideReason
	}

	if input.Status != nil {
		if err := s.advance(ctx, current, *input.Status, input.Lat, input.Lon, input.Principal); err != nil {
			return nil, err
		}
	}

	return s.jobs.GetJob(ctx, jobID)
}

// AdvanceStatus moves the job one step forward, or cancels it. Drivers may
// only move jobs they are assigned to.
func (s *JobService) AdvanceStatus(ctx context.Context, jobID uuid.UUID, target model.JobStatus, lat, lon *float64, principal model.Principal) (*model.Job, error) {
	current, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if principal.IsDriver() {
		if current.DriverID == nil || *current.DriverID != principal.UserID {
			return nil, fmt.Errorf("%w: job is not assigned to this driver", ErrPermissionDenied)
		}
	}

	if err := s.advance(ctx, current, target, lat, lon, principal); err != nil {
		return nil, err
	}
	return s.jobs.GetJob(ctx, jobID)
}

func (s *JobService) advance(ctx context.Context, current *model.Job, target model.JobStatus, lat, lon *float64, principal model.Principal) error {
	if err := job.PlanTransition(current, target); err != nil {
		return err
	}

	err := s.jobs.AdvanceStatus(ctx, model.JobStatusEvent{
		JobID:      current.ID,
		FromStatus: current.Status,
		ToStatus:   target,
		Lat:        lat,
		Lon:        lon,
		ActorID:    principal.UserID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		// Lost the race: someone else moved the job first. The requested
		// step is no longer the legal one.
		if errors.Is(err, repository.ErrStaleStatus) {
			return fmt.Errorf("%w: status changed concurrently", ErrIllegalTransition)
		}
		return err
	}
	current.Status = target
	return nil
}

// NextAction returns the single legal forward step for the UI button; ok is
// false for terminal jobs.
func (s *JobService) NextAction(ctx context.Context, jobID uuid.UUID) (model.JobStatus, bool, error) {
	current, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, ErrNotFound
		}
		return "", false, err
	}
	next, ok := job.NextStatus(current.Status)
	return next, ok, nil
}

// StatusEvents returns the job's append-only transition log, oldest first.
func (s *JobService) StatusEvents(ctx context.Context, jobID uuid.UUID) ([]model.JobStatusEvent, error) {
	if _, err := s.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	return s.jobs.ListStatusEvents(ctx, jobID)
}

// GetJob fetches a job, mapping the missing row to ErrNotFound.
func (s *JobService) GetJob(ctx context.Context, jobID uuid.UUID) (*model.Job, error) {
	j, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return j, nil
}
