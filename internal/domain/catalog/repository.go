package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository covers the four reference tables. The simple name-only tables
// share one generic shape; medications add price/stock handling.
type Repository interface {
	ListDiseaseTypes(ctx context.Context) ([]*DiseaseType, error)
	CreateDiseaseType(ctx context.Context, d *DiseaseType) error
	UpdateDiseaseType(ctx context.Context, id uuid.UUID, name string) (*DiseaseType, error)
	DeleteDiseaseType(ctx context.Context, id uuid.UUID) error

	ListUnits(ctx context.Context) ([]*Unit, error)
	CreateUnit(ctx context.Context, u *Unit) error
	UpdateUnit(ctx context.Context, id uuid.UUID, name string) (*Unit, error)
	DeleteUnit(ctx context.Context, id uuid.UUID) error

	ListInstructions(ctx context.Context) ([]*DosageInstruction, error)
	CreateInstruction(ctx context.Context, i *DosageInstruction) error
	UpdateInstruction(ctx context.Context, id uuid.UUID, name string) (*DosageInstruction, error)
	DeleteInstruction(ctx context.Context, id uuid.UUID) error

	ListMedications(ctx context.Context, q *ListMedicationsQuery) ([]*Medication, error)
	GetMedication(ctx context.Context, id uuid.UUID) (*Medication, error)
	CreateMedication(ctx context.Context, m *Medication) error
	UpdateMedication(ctx context.Context, id uuid.UUID, cmd *UpdateMedicationCommand) (*Medication, error)
	DeleteMedication(ctx context.Context, id uuid.UUID) error

	// GetMedicationForUpdate locks the row (SELECT ... FOR UPDATE) so
	// concurrent prescriptions cannot race the stock check.
	GetMedicationForUpdate(ctx context.Context, id uuid.UUID) (*Medication, error)

	// AdjustStock applies a delta to stock_count, persisting only that
	// column. Callers must hold the row lock and have verified the result
	// stays non-negative.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}
