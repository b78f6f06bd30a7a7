package service

import (
	"errors"

	"github.com/nurpe/haulops-billing/internal/job"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")

	// ErrNoRate means no price-list entry matched; callers surface
	// "no matching price list" and carry on, it never blocks a job.
	ErrNoRate = errors.New("no matching price list")

	ErrInvalidQuantity = errors.New("quantity must be positive")

	// Domain invariants are owned by the job package; re-exported here so
	// handlers map every outcome off one package.
	ErrAssignmentConflict = job.ErrAssignmentConflict
	ErrIllegalTransition  = job.ErrIllegalTransition
	ErrUnassigned         = job.ErrUnassigned
)
