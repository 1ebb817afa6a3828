package visit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a queue entry. Returns ErrAlreadyQueued when the
	// (visit_date, patient) pair already exists.
	Create(ctx context.Context, e *QueueEntry) error

	GetByID(ctx context.Context, id uuid.UUID) (*QueueEntry, error)

	// LockDate serializes writers for a day within the current transaction.
	// Callers enforcing the daily cap take this lock before counting, so two
	// concurrent registrations cannot both observe a free slot.
	LockDate(ctx context.Context, date time.Time) error

	// CountByDate returns the number of entries queued for the given date.
	// Callers enforcing the daily cap run this inside the same transaction
	// as the insert, after LockDate.
	CountByDate(ctx context.Context, date time.Time) (int64, error)

	// List returns entries (optionally filtered by date) with their patient
	// preloaded and the examined flag resolved against medical records.
	List(ctx context.Context, q *ListQueueQuery) ([]*QueueEntryView, error)

	// UpdateDate moves an entry to another date, subject to the same
	// uniqueness constraint.
	UpdateDate(ctx context.Context, id uuid.UUID, date time.Time) (*QueueEntry, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
