package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicdesk/clinicdesk/internal/domain/record"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

var _ record.Repository = (*RecordRepository)(nil)

func (r *RecordRepository) Create(ctx context.Context, rec *record.MedicalRecord) error {
	// Lines are written by the prescription pipeline, never as part of the
	// header insert.
	err := dbFrom(ctx, r.db).Omit("Lines").Create(rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return record.ErrQueueEntryTaken
		}
		return fmt.Errorf("creating medical record: %w", err)
	}
	return nil
}

func (r *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*record.MedicalRecord, error) {
	var rec record.MedicalRecord
	err := dbFrom(ctx, r.db).
		Preload("Patient").
		Preload("DiseaseType").
		Preload("Lines").
		Preload("Lines.Medication").
		Preload("Lines.Medication.Unit").
		Preload("Lines.Instructions").
		First(&rec, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, record.ErrRecordNotFound
		}
		return nil, fmt.Errorf("fetching medical record: %w", err)
	}
	return &rec, nil
}

func (r *RecordRepository) Update(ctx context.Context, rec *record.MedicalRecord) error {
	res := dbFrom(ctx, r.db).
		Model(&record.MedicalRecord{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"visit_date":      visit.Day(rec.VisitDate),
			"symptoms":        rec.Symptoms,
			"disease_type_id": rec.DiseaseTypeID,
		})
	if res.Error != nil {
		return fmt.Errorf("updating medical record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return record.ErrRecordNotFound
	}
	return nil
}

func (r *RecordRepository) List(ctx context.Context, q *record.ListRecordsQuery) (*record.PagedRecords, error) {
	db := dbFrom(ctx, r.db).Model(&record.MedicalRecord{})

	if q.PatientID != nil {
		db = db.Where("patient_id = ?", *q.PatientID)
	}
	if q.DateFrom != nil {
		db = db.Where("visit_date >= ?", visit.Day(*q.DateFrom))
	}
	if q.DateTo != nil {
		db = db.Where("visit_date <= ?", visit.Day(*q.DateTo))
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting medical records: %w", err)
	}

	page, pageSize := normalizePage(q.Page, q.PageSize)

	var records []*record.MedicalRecord
	err := db.Preload("Patient").
		Preload("DiseaseType").
		Preload("Lines").
		Preload("Lines.Medication").
		Order("visit_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("listing medical records: %w", err)
	}

	return &record.PagedRecords{
		Records:    records,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (r *RecordRepository) CreateLine(ctx context.Context, l *record.PrescriptionLine) error {
	if err := dbFrom(ctx, r.db).Create(l).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return record.ErrDuplicateMedication
		}
		return fmt.Errorf("creating prescription line: %w", err)
	}
	return nil
}

func (r *RecordRepository) UpdateLine(ctx context.Context, l *record.PrescriptionLine) error {
	res := dbFrom(ctx, r.db).
		Model(&record.PrescriptionLine{}).
		Where("id = ?", l.ID).
		Updates(map[string]any{
			"quantity":        l.Quantity,
			"instructions_id": l.InstructionsID,
		})
	if res.Error != nil {
		return fmt.Errorf("updating prescription line: %w", res.Error)
	}
	return nil
}

func (r *RecordRepository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	if err := dbFrom(ctx, r.db).Delete(&record.PrescriptionLine{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("deleting prescription line: %w", err)
	}
	return nil
}

func (r *RecordRepository) GetLines(ctx context.Context, recordID uuid.UUID) ([]record.PrescriptionLine, error) {
	var lines []record.PrescriptionLine
	err := dbFrom(ctx, r.db).
		Where("record_id = ?", recordID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("fetching prescription lines: %w", err)
	}
	return lines, nil
}
