package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicdesk/clinicdesk/internal/domain"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

var _ domain.AuditRepository = (*AuditRepository)(nil)

func (r *AuditRepository) Insert(ctx context.Context, entries []*domain.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	if err := dbFrom(ctx, r.db).CreateInBatches(entries, 100).Error; err != nil {
		return fmt.Errorf("inserting audit entries: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, accountID *uuid.UUID, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	db := dbFrom(ctx, r.db).Model(&domain.AuditLog{})
	if accountID != nil {
		db = db.Where("account_id = ?", *accountID)
	}

	var entries []*domain.AuditLog
	if err := db.Order("occurred_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	return entries, nil
}
