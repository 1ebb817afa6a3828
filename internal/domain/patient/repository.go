package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error

	// GetByID retrieves a patient by primary key. Returns ErrPatientNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// FindByIdentity looks up a patient by the (full_name, birth_year, sex)
	// heuristic used during registration. Returns ErrPatientNotFound when no
	// exact match exists. This match is deliberately fuzzy: two people can
	// share a name and birth year, and a spelling variance creates a
	// duplicate record.
	FindByIdentity(ctx context.Context, fullName string, birthYear int, sex Sex) (*Patient, error)

	// Update applies partial updates to an existing patient record.
	Update(ctx context.Context, id uuid.UUID, cmd *UpdatePatientCommand) (*Patient, error)

	// List returns a paginated, filtered list of patients.
	List(ctx context.Context, q *ListPatientsQuery) (*PagedPatients, error)
}
