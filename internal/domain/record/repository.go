package record

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists the record header. Lines are written separately so the
	// service can interleave stock adjustments.
	Create(ctx context.Context, r *MedicalRecord) error

	// GetByID returns the record with lines (and their medications,
	// instructions), patient and disease type preloaded.
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)

	Update(ctx context.Context, r *MedicalRecord) error

	List(ctx context.Context, q *ListRecordsQuery) (*PagedRecords, error)

	CreateLine(ctx context.Context, l *PrescriptionLine) error
	UpdateLine(ctx context.Context, l *PrescriptionLine) error
	DeleteLine(ctx context.Context, id uuid.UUID) error

	// GetLines returns the current line set for a record, without preloads.
	GetLines(ctx context.Context, recordID uuid.UUID) ([]PrescriptionLine, error)
}
