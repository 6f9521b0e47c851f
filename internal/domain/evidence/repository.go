package evidence

import (
	"context"
	"time"
)

type EvidenceRepository interface {
	// LockUserDay serializes uploads of one user on one day until the
	// surrounding transaction ends
	LockUserDay(ctx context.Context, userID string, day time.Time) error

	// GetByUserDay returns ErrEvidenceNotFound when the user has no entry that day
	GetByUserDay(ctx context.Context, userID string, day time.Time) (TeachingEvidence, error)

	// Upsert inserts the day's entry or overwrites the existing one
	Upsert(ctx context.Context, e TeachingEvidence) (TeachingEvidence, error)

	// ListForUser returns entries with from <= work_date <= to, newest first
	ListForUser(ctx context.Context, userID string, from, to time.Time) ([]TeachingEvidence, error)
}
