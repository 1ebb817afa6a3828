package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

var _ patient.Repository = (*PatientRepository)(nil)

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	if err := dbFrom(ctx, r.db).Create(p).Error; err != nil {
		return fmt.Errorf("creating patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	err := dbFrom(ctx, r.db).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, fmt.Errorf("fetching patient: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) FindByIdentity(ctx context.Context, fullName string, birthYear int, sex patient.Sex) (*patient.Patient, error) {
	var p patient.Patient
	err := dbFrom(ctx, r.db).
		Where("full_name = ? AND birth_year = ? AND sex = ?", fullName, birthYear, sex).
		Order("created_at ASC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, fmt.Errorf("matching patient identity: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) Update(ctx context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	db := dbFrom(ctx, r.db)

	updates := map[string]any{}
	if cmd.FullName != nil {
		updates["full_name"] = *cmd.FullName
	}
	if cmd.Address != nil {
		updates["address"] = *cmd.Address
	}
	if cmd.BirthYear != nil {
		updates["birth_year"] = *cmd.BirthYear
	}
	if cmd.Sex != nil {
		updates["sex"] = *cmd.Sex
	}

	if len(updates) > 0 {
		res := db.Model(&patient.Patient{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("updating patient: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, patient.ErrPatientNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *PatientRepository) List(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	db := dbFrom(ctx, r.db).Model(&patient.Patient{})

	if q.Search != "" {
		db = db.Where("full_name ILIKE ?", "%"+q.Search+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting patients: %w", err)
	}

	page, pageSize := normalizePage(q.Page, q.PageSize)

	var patients []*patient.Patient
	err := db.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}

	return &patient.PagedPatients{
		Patients:   patients,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}
