package catalog

import "errors"

var (
	ErrDiseaseTypeNotFound = errors.New("disease type not found")
	ErrUnitNotFound        = errors.New("unit not found")
	ErrInstructionNotFound = errors.New("dosage instruction not found")
	ErrMedicationNotFound  = errors.New("medication not found")

	ErrDuplicateName = errors.New("an entry with this name already exists")

	// ErrInsufficientStock aborts the whole prescription write; stock can
	// never go below zero.
	ErrInsufficientStock = errors.New("insufficient stock for requested quantity")

	// ErrInUse is returned when deleting a catalog entry that prescriptions
	// or medications still reference.
	ErrInUse = errors.New("entry is referenced by existing records")
)
