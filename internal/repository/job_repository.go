package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/haulops-billing/internal/model"
)

// ErrStaleStatus signals that the guarded status update matched no row: the
// job's status changed between read and write.
var ErrStaleStatus = errors.New("job status changed concurrently")

const jobColumns = `
	id,
	org_id,
	customer_id,
	material_id,
	from_site_id,
	to_site_id,
	scheduled_date,
	planned_qty,
	actual_qty,
	unit,
	truck_id,
	driver_id,
	subcontractor_id,
	is_subcontractor,
	subcontractor_billing_unit,
	status,
	manual_override_total,
	manual_override_reason,
	wait_hours,
	is_night,
	created_at,
	updated_at
`

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) GetJob(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+jobColumns+`
		FROM jobs
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &job, nil
}

// UpdateAssignment persists the assignment swap as one statement so the
// truck and subcontractor sides are never observed half-applied.
func (r *JobRepository) UpdateAssignment(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE jobs
		SET
			truck_id = ?,
			driver_id = ?,
			subcontractor_id = ?,
			is_subcontractor = ?,
			subcontractor_billing_unit = ?,
			updated_at = NOW()
		WHERE id = ?
	`,
		job.TruckID,
		job.DriverID,
		job.SubcontractorID,
		job.IsSubcontractor,
		job.SubcontractorBillingUnit,
		job.ID,
	).Error
}

// UpdateOverride sets or clears both override columns together. Passing nil
// for both reverts the job to computed pricing.
func (r *JobRepository) UpdateOverride(ctx context.Context, jobID uuid.UUID, total *decimal.Decimal, reason *string) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE jobs
		SET
			manual_override_total = ?,
			manual_override_reason = ?,
			updated_at = NOW()
		WHERE id = ?
	`, total, reason, jobID).Error
}

// AdvanceStatus performs the guarded single-step transition and appends the
// status event in the same transaction. The WHERE clause pins the expected
// current status; a concurrent change surfaces as ErrStaleStatus and leaves
// the row untouched.
func (r *JobRepository) AdvanceStatus(ctx context.Context, event model.JobStatusEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(`
			UPDATE jobs
			SET status = ?, updated_at = NOW()
			WHERE id = ? AND status = ?
		`, event.ToStatus, event.JobID, event.FromStatus)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleStatus
		}

		return tx.Exec(`
			INSERT INTO job_status_events (job_id, from_status, to_status, lat, lon, actor_id, occurred_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			event.JobID,
			event.FromStatus,
			event.ToStatus,
			event.Lat,
			event.Lon,
			event.ActorID,
			event.OccurredAt,
		).Error
	})
}

// ListStatusEvents returns the append-only transition log, oldest first.
func (r *JobRepository) ListStatusEvents(ctx context.Context, jobID uuid.UUID) ([]model.JobStatusEvent, error) {
	var events []model.JobStatusEvent
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, job_id, from_status, to_status, lat, lon, actor_id, occurred_at
		FROM job_status_events
		WHERE job_id = ?
		ORDER BY occurred_at ASC
	`, jobID).Scan(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListJobsForCustomer returns a customer's non-canceled jobs scheduled
// inside [from, to).
func (r *JobRepository) ListJobsForCustomer(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+jobColumns+`
		FROM jobs
		WHERE customer_id = ?
			AND scheduled_date >= ?
			AND scheduled_date < ?
			AND status <> 'CANCELED'
		ORDER BY scheduled_date ASC, created_at ASC
	`, customerID, from, to).Scan(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListJobsForSubcontractor returns a subcontractor's non-canceled jobs
// scheduled inside [from, to).
func (r *JobRepository) ListJobsForSubcontractor(ctx context.Context, subcontractorID uuid.UUID, from, to time.Time) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+jobColumns+`
		FROM jobs
		WHERE subcontractor_id = ?
			AND scheduled_date >= ?
			AND scheduled_date < ?
			AND status <> 'CANCELED'
		ORDER BY scheduled_date ASC, created_at ASC
	`, subcontractorID, from, to).Scan(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}
