package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	GetByRecordID(ctx context.Context, recordID uuid.UUID) (*Invoice, error)

	// Upsert writes the single invoice row for a record, updating the two
	// component amounts when they differ from what is stored.
	Upsert(ctx context.Context, inv *Invoice) error

	List(ctx context.Context, page, pageSize int) ([]*Invoice, int64, error)

	// SumPaidBetween returns the summed total (fee + medication) of invoices
	// whose paid_at falls in [from, to).
	SumPaidBetween(ctx context.Context, from, to time.Time) (int64, error)
}
