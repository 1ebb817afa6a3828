package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicdesk/clinicdesk/internal/domain/invoice"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

var _ invoice.Repository = (*InvoiceRepository)(nil)

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := dbFrom(ctx, r.db).First(&inv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoice.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("fetching invoice: %w", err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) GetByRecordID(ctx context.Context, recordID uuid.UUID) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	err := dbFrom(ctx, r.db).First(&inv, "record_id = ?", recordID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoice.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("fetching invoice by record: %w", err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) Upsert(ctx context.Context, inv *invoice.Invoice) error {
	err := dbFrom(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "record_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"paid_at", "consultation_fee", "medication_total", "updated_at",
			}),
		}).
		Create(inv).Error
	if err != nil {
		return fmt.Errorf("upserting invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) List(ctx context.Context, page, pageSize int) ([]*invoice.Invoice, int64, error) {
	db := dbFrom(ctx, r.db).Model(&invoice.Invoice{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting invoices: %w", err)
	}

	page, pageSize = normalizePage(page, pageSize)

	var invoices []*invoice.Invoice
	err := db.Order("paid_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing invoices: %w", err)
	}
	return invoices, total, nil
}

func (r *InvoiceRepository) SumPaidBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := dbFrom(ctx, r.db).
		Model(&invoice.Invoice{}).
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Select("COALESCE(SUM(consultation_fee + medication_total), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("summing invoices: %w", err)
	}
	return total, nil
}
