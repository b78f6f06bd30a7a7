package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/haulops-billing/internal/model"
	"github.com/nurpe/haulops-billing/internal/rate"
	"github.com/nurpe/haulops-billing/internal/repository"
)

// fakeCatalog mimics the repository's SQL prefilter: party, active, date.
type fakeCatalog struct {
	entries []model.RateCardEntry
}

func (f *fakeCatalog) ListCandidates(_ context.Context, partyType model.PartyType, partyID uuid.UUID, asOf time.Time) ([]model.RateCardEntry, error) {
	var out []model.RateCardEntry
	for _, e := range f.entries {
		if e.PartyType == partyType && e.PartyID == partyID && e.IsActive && e.CoversDate(asOf) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeJobStore struct {
	jobs   map[uuid.UUID]*model.Job
	events []model.JobStatusEvent
}

func newFakeJobStore(jobs ...*model.Job) *fakeJobStore {
	store := &fakeJobStore{jobs: make(map[uuid.UUID]*model.Job)}
	for _, j := range jobs {
		store.jobs[j.ID] = j
	}
	return store
}

func (f *fakeJobStore) GetJob(_ context.Context, id uuid.UUID) (*model.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *j
	return &copied, nil
}

func (f *fakeJobStore) UpdateAssignment(_ context.Context, j *model.Job) error {
	stored, ok := f.jobs[j.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.TruckID = j.TruckID
	stored.DriverID = j.DriverID
	stored.SubcontractorID = j.SubcontractorID
	stored.IsSubcontractor = j.IsSubcontractor
	stored.SubcontractorBillingUnit = j.SubcontractorBillingUnit
	return nil
}

func (f *fakeJobStore) UpdateOverride(_ context.Context, jobID uuid.UUID, total *decimal.Decimal, reason *string) error {
	stored, ok := f.jobs[jobID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.ManualOverrideTotal = total
	stored.ManualOverrideReason = reason
	return nil
}

func (f *fakeJobStore) AdvanceStatus(_ context.Context, event model.JobStatusEvent) error {
	stored, ok := f.jobs[event.JobID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Status != event.FromStatus {
		return repository.ErrStaleStatus
	}
	stored.Status = event.ToStatus
	f.events = append(f.events, event)
	return nil
}

func (f *fakeJobStore) ListStatusEvents(_ context.Context, jobID uuid.UUID) ([]model.JobStatusEvent, error) {
	var out []model.JobStatusEvent
	for _, event := range f.events {
		if event.JobID == jobID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (f *fakeJobStore) ListJobsForCustomer(_ context.Context, customerID uuid.UUID, from, to time.Time) ([]model.Job, error) {
	var out []model.Job
	for _, j := range f.jobs {
		if j.CustomerID == customerID && j.Status != model.JobStatusCanceled &&
			!j.ScheduledDate.Before(from) && j.ScheduledDate.Before(to) {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (f *fakeJobStore) ListJobsForSubcontractor(_ context.Context, subID uuid.UUID, from, to time.Time) ([]model.Job, error) {
	var out []model.Job
	for _, j := range f.jobs {
		if j.SubcontractorID != nil && *j.SubcontractorID == subID && j.Status != model.JobStatusCanceled &&
			!j.ScheduledDate.Before(from) && j.ScheduledDate.Before(to) {
			out = append(out, *j)
		}
	}
	return out, nil
}

func dec(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", raw, err)
	}
	return value
}

func decPtr(t *testing.T, raw string) *decimal.Decimal {
	t.Helper()
	value := dec(t, raw)
	return &value
}

func day(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		t.Fatalf("bad date %q: %v", raw, err)
	}
	return parsed
}

func mustEqual(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func dispatcher() model.Principal {
	return model.Principal{UserID: uuid.New(), OrgID: uuid.New(), Role: model.RoleDispatcher}
}

func noPolicy() rate.SurchargePolicy {
	return rate.StandardPolicy{WaitHourlyRate: decimal.Zero, NightPercent: decimal.Zero}
}
