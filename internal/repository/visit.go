package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
)

type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

var _ visit.Repository = (*VisitRepository)(nil)

func (r *VisitRepository) Create(ctx context.Context, e *visit.QueueEntry) error {
	if err := dbFrom(ctx, r.db).Create(e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return visit.ErrAlreadyQueued
		}
		return fmt.Errorf("creating queue entry: %w", err)
	}
	return nil
}

func (r *VisitRepository) GetByID(ctx context.Context, id uuid.UUID) (*visit.QueueEntry, error) {
	var e visit.QueueEntry
	err := dbFrom(ctx, r.db).Preload("Patient").First(&e, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, visit.ErrEntryNotFound
		}
		return nil, fmt.Errorf("fetching queue entry: %w", err)
	}
	return &e, nil
}

// LockDate takes a transaction-scoped advisory lock keyed on the day, held
// until commit or rollback. Must run inside a transaction.
func (r *VisitRepository) LockDate(ctx context.Context, date time.Time) error {
	key := visit.Day(date).Unix()
	if err := dbFrom(ctx, r.db).Exec("SELECT pg_advisory_xact_lock(?)", key).Error; err != nil {
		return fmt.Errorf("locking visit date: %w", err)
	}
	return nil
}

func (r *VisitRepository) CountByDate(ctx context.Context, date time.Time) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).
		Model(&visit.QueueEntry{}).
		Where("visit_date = ?", visit.Day(date)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting queue entries: %w", err)
	}
	return count, nil
}

func (r *VisitRepository) List(ctx context.Context, q *visit.ListQueueQuery) ([]*visit.QueueEntryView, error) {
	db := dbFrom(ctx, r.db)

	query := db.Model(&visit.QueueEntry{}).Preload("Patient")
	if q.VisitDate != nil {
		query = query.Where("visit_date = ?", visit.Day(*q.VisitDate))
	}

	var entries []*visit.QueueEntry
	if err := query.Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("listing queue entries: %w", err)
	}

	if len(entries) == 0 {
		return []*visit.QueueEntryView{}, nil
	}

	// Resolve which entries already have a medical record in one query.
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}

	var examined []uuid.UUID
	err := db.Table("clinical.medical_records").
		Where("queue_entry_id IN ?", ids).
		Pluck("queue_entry_id", &examined).Error
	if err != nil {
		return nil, fmt.Errorf("resolving examined entries: %w", err)
	}

	examinedSet := make(map[uuid.UUID]struct{}, len(examined))
	for _, id := range examined {
		examinedSet[id] = struct{}{}
	}

	views := make([]*visit.QueueEntryView, 0, len(entries))
	for _, e := range entries {
		_, ok := examinedSet[e.ID]
		views = append(views, &visit.QueueEntryView{QueueEntry: *e, Examined: ok})
	}
	return views, nil
}

func (r *VisitRepository) UpdateDate(ctx context.Context, id uuid.UUID, date time.Time) (*visit.QueueEntry, error) {
	res := dbFrom(ctx, r.db).
		Model(&visit.QueueEntry{}).
		Where("id = ?", id).
		Update("visit_date", visit.Day(date))
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, visit.ErrAlreadyQueued
		}
		return nil, fmt.Errorf("moving queue entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, visit.ErrEntryNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *VisitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := dbFrom(ctx, r.db).Delete(&visit.QueueEntry{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting queue entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return visit.ErrEntryNotFound
	}
	return nil
}
