package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicdesk/clinicdesk/internal/domain/catalog"
)

// CatalogService manages the reference tables: disease types, units, dosage
// instructions and the medication list with its price and stock fields.
type CatalogService struct {
	repo catalog.Repository
	log  *zap.Logger
}

func NewCatalogService(repo catalog.Repository, log *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, log: log}
}

func (s *CatalogService) ListDiseaseTypes(ctx context.Context) ([]*catalog.DiseaseType, error) {
	return s.repo.ListDiseaseTypes(ctx)
}

func (s *CatalogService) CreateDiseaseType(ctx context.Context, name string) (*catalog.DiseaseType, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	d := &catalog.DiseaseType{Name: name}
	if err := s.repo.CreateDiseaseType(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *CatalogService) UpdateDiseaseType(ctx context.Context, id uuid.UUID, name string) (*catalog.DiseaseType, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateDiseaseType(ctx, id, name)
}

func (s *CatalogService) DeleteDiseaseType(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteDiseaseType(ctx, id)
}

func (s *CatalogService) ListUnits(ctx context.Context) ([]*catalog.Unit, error) {
	return s.repo.ListUnits(ctx)
}

func (s *CatalogService) CreateUnit(ctx context.Context, name string) (*catalog.Unit, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	u := &catalog.Unit{Name: name}
	if err := s.repo.CreateUnit(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *CatalogService) UpdateUnit(ctx context.Context, id uuid.UUID, name string) (*catalog.Unit, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateUnit(ctx, id, name)
}

func (s *CatalogService) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteUnit(ctx, id)
}

func (s *CatalogService) ListInstructions(ctx context.Context) ([]*catalog.DosageInstruction, error) {
	return s.repo.ListInstructions(ctx)
}

func (s *CatalogService) CreateInstruction(ctx context.Context, name string) (*catalog.DosageInstruction, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	i := &catalog.DosageInstruction{Name: name}
	if err := s.repo.CreateInstruction(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *CatalogService) UpdateInstruction(ctx context.Context, id uuid.UUID, name string) (*catalog.DosageInstruction, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateInstruction(ctx, id, name)
}

func (s *CatalogService) DeleteInstruction(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteInstruction(ctx, id)
}

func (s *CatalogService) ListMedications(ctx context.Context, q *catalog.ListMedicationsQuery) ([]*catalog.Medication, error) {
	return s.repo.ListMedications(ctx, q)
}

func (s *CatalogService) GetMedication(ctx context.Context, id uuid.UUID) (*catalog.Medication, error) {
	return s.repo.GetMedication(ctx, id)
}

func (s *CatalogService) CreateMedication(ctx context.Context, cmd *catalog.CreateMedicationCommand) (*catalog.Medication, error) {
	if err := validateMedication(cmd.Name, cmd.UnitPrice, cmd.StockCount); err != nil {
		return nil, err
	}

	m := &catalog.Medication{
		Name:                  strings.TrimSpace(cmd.Name),
		UnitID:                cmd.UnitID,
		UnitPrice:             cmd.UnitPrice,
		StockCount:            cmd.StockCount,
		DefaultInstructionsID: cmd.DefaultInstructionsID,
		ExpiryDate:            cmd.ExpiryDate,
	}
	if err := s.repo.CreateMedication(ctx, m); err != nil {
		return nil, err
	}

	s.log.Info("medication created",
		zap.String("medication_id", m.ID.String()),
		zap.String("name", m.Name),
	)
	return s.repo.GetMedication(ctx, m.ID)
}

func (s *CatalogService) UpdateMedication(ctx context.Context, id uuid.UUID, cmd *catalog.UpdateMedicationCommand) (*catalog.Medication, error) {
	var fields []string
	if cmd.Name != nil && strings.TrimSpace(*cmd.Name) == "" {
		fields = append(fields, "name must not be empty")
	}
	if cmd.UnitPrice != nil && *cmd.UnitPrice < 0 {
		fields = append(fields, "unit_price must not be negative")
	}
	if cmd.StockCount != nil && *cmd.StockCount < 0 {
		fields = append(fields, "stock_count must not be negative")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return s.repo.UpdateMedication(ctx, id, cmd)
}

func (s *CatalogService) DeleteMedication(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteMedication(ctx, id)
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Fields: []string{"name is required"}}
	}
	return name, nil
}

func validateMedication(name string, unitPrice int64, stockCount int) error {
	var fields []string
	if strings.TrimSpace(name) == "" {
		fields = append(fields, "name is required")
	}
	if unitPrice < 0 {
		fields = append(fields, "unit_price must not be negative")
	}
	if stockCount < 0 {
		fields = append(fields, "stock_count must not be negative")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
