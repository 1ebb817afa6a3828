package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicdesk/clinicdesk/internal/domain/catalog"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

var _ catalog.Repository = (*CatalogRepository)(nil)

func (r *CatalogRepository) ListDiseaseTypes(ctx context.Context) ([]*catalog.DiseaseType, error) {
	var out []*catalog.DiseaseType
	if err := dbFrom(ctx, r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing disease types: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) CreateDiseaseType(ctx context.Context, d *catalog.DiseaseType) error {
	if err := dbFrom(ctx, r.db).Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return catalog.ErrDuplicateName
		}
		return fmt.Errorf("creating disease type: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpdateDiseaseType(ctx context.Context, id uuid.UUID, name string) (*catalog.DiseaseType, error) {
	d := &catalog.DiseaseType{}
	if err := r.renameRow(ctx, d, id, name, catalog.ErrDiseaseTypeNotFound); err != nil {
		return nil, err
	}
	if err := dbFrom(ctx, r.db).First(d, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("fetching disease type: %w", err)
	}
	return d, nil
}

func (r *CatalogRepository) DeleteDiseaseType(ctx context.Context, id uuid.UUID) error {
	return r.deleteRow(ctx, &catalog.DiseaseType{}, id, catalog.ErrDiseaseTypeNotFound)
}

func (r *CatalogRepository) ListUnits(ctx context.Context) ([]*catalog.Unit, error) {
	var out []*catalog.Unit
	if err := dbFrom(ctx, r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing units: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) CreateUnit(ctx context.Context, u *catalog.Unit) error {
	if err := dbFrom(ctx, r.db).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return catalog.ErrDuplicateName
		}
		return fmt.Errorf("creating unit: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpdateUnit(ctx context.Context, id uuid.UUID, name string) (*catalog.Unit, error) {
	u := &catalog.Unit{}
	if err := r.renameRow(ctx, u, id, name, catalog.ErrUnitNotFound); err != nil {
		return nil, err
	}
	if err := dbFrom(ctx, r.db).First(u, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("fetching unit: %w", err)
	}
	return u, nil
}

func (r *CatalogRepository) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	return r.deleteRow(ctx, &catalog.Unit{}, id, catalog.ErrUnitNotFound)
}

func (r *CatalogRepository) ListInstructions(ctx context.Context) ([]*catalog.DosageInstruction, error) {
	var out []*catalog.DosageInstruction
	if err := dbFrom(ctx, r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing dosage instructions: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) CreateInstruction(ctx context.Context, i *catalog.DosageInstruction) error {
	if err := dbFrom(ctx, r.db).Create(i).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return catalog.ErrDuplicateName
		}
		return fmt.Errorf("creating dosage instruction: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpdateInstruction(ctx context.Context, id uuid.UUID, name string) (*catalog.DosageInstruction, error) {
	i := &catalog.DosageInstruction{}
	if err := r.renameRow(ctx, i, id, name, catalog.ErrInstructionNotFound); err != nil {
		return nil, err
	}
	if err := dbFrom(ctx, r.db).First(i, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("fetching dosage instruction: %w", err)
	}
	return i, nil
}

func (r *CatalogRepository) DeleteInstruction(ctx context.Context, id uuid.UUID) error {
	return r.deleteRow(ctx, &catalog.DosageInstruction{}, id, catalog.ErrInstructionNotFound)
}

func (r *CatalogRepository) ListMedications(ctx context.Context, q *catalog.ListMedicationsQuery) ([]*catalog.Medication, error) {
	db := dbFrom(ctx, r.db).
		Preload("Unit").
		Preload("DefaultInstructions")

	if q != nil && q.Search != "" {
		db = db.Where("name ILIKE ?", "%"+q.Search+"%")
	}

	var out []*catalog.Medication
	if err := db.Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing medications: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) GetMedication(ctx context.Context, id uuid.UUID) (*catalog.Medication, error) {
	var m catalog.Medication
	err := dbFrom(ctx, r.db).
		Preload("Unit").
		Preload("DefaultInstructions").
		First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrMedicationNotFound
		}
		return nil, fmt.Errorf("fetching medication: %w", err)
	}
	return &m, nil
}

func (r *CatalogRepository) CreateMedication(ctx context.Context, m *catalog.Medication) error {
	if err := dbFrom(ctx, r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return catalog.ErrDuplicateName
		}
		return fmt.Errorf("creating medication: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpdateMedication(ctx context.Context, id uuid.UUID, cmd *catalog.UpdateMedicationCommand) (*catalog.Medication, error) {
	updates := map[string]any{}
	if cmd.Name != nil {
		updates["name"] = *cmd.Name
	}
	if cmd.UnitID != nil {
		updates["unit_id"] = *cmd.UnitID
	}
	if cmd.UnitPrice != nil {
		updates["unit_price"] = *cmd.UnitPrice
	}
	if cmd.StockCount != nil {
		updates["stock_count"] = *cmd.StockCount
	}
	if cmd.DefaultInstructionsID != nil {
		updates["default_instructions_id"] = *cmd.DefaultInstructionsID
	}
	if cmd.ExpiryDate != nil {
		updates["expiry_date"] = *cmd.ExpiryDate
	}

	if len(updates) > 0 {
		res := dbFrom(ctx, r.db).Model(&catalog.Medication{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil, catalog.ErrDuplicateName
			}
			return nil, fmt.Errorf("updating medication: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, catalog.ErrMedicationNotFound
		}
	}

	return r.GetMedication(ctx, id)
}

func (r *CatalogRepository) DeleteMedication(ctx context.Context, id uuid.UUID) error {
	res := dbFrom(ctx, r.db).Delete(&catalog.Medication{}, "id = ?", id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return catalog.ErrInUse
		}
		return fmt.Errorf("deleting medication: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return catalog.ErrMedicationNotFound
	}
	return nil
}

func (r *CatalogRepository) GetMedicationForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Medication, error) {
	var m catalog.Medication
	err := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrMedicationNotFound
		}
		return nil, fmt.Errorf("locking medication: %w", err)
	}
	return &m, nil
}

func (r *CatalogRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	res := dbFrom(ctx, r.db).
		Model(&catalog.Medication{}).
		Where("id = ?", id).
		Update("stock_count", gorm.Expr("stock_count + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("adjusting stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return catalog.ErrMedicationNotFound
	}
	return nil
}

func (r *CatalogRepository) renameRow(ctx context.Context, model any, id uuid.UUID, name string, notFound error) error {
	res := dbFrom(ctx, r.db).Model(model).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return catalog.ErrDuplicateName
		}
		return fmt.Errorf("renaming catalog entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound
	}
	return nil
}

func (r *CatalogRepository) deleteRow(ctx context.Context, model any, id uuid.UUID, notFound error) error {
	res := dbFrom(ctx, r.db).Delete(model, "id = ?", id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return catalog.ErrInUse
		}
		return fmt.Errorf("deleting catalog entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound
	}
	return nil
}
