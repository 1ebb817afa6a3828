package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicdesk/clinicdesk/internal/domain/setting"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

var _ setting.Repository = (*SettingRepository)(nil)

func (r *SettingRepository) List(ctx context.Context) ([]*setting.Setting, error) {
	var out []*setting.Setting
	if err := dbFrom(ctx, r.db).Order("key ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	return out, nil
}

func (r *SettingRepository) GetValue(ctx context.Context, key setting.Key, fallback int64) (int64, error) {
	var s setting.Setting
	err := dbFrom(ctx, r.db).First(&s, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fallback, nil
		}
		return 0, fmt.Errorf("reading setting %s: %w", key, err)
	}
	return s.Value, nil
}

func (r *SettingRepository) Set(ctx context.Context, key setting.Key, value int64) (*setting.Setting, error) {
	s := setting.Setting{Key: key, Value: value}
	err := dbFrom(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&s).Error
	if err != nil {
		return nil, fmt.Errorf("writing setting %s: %w", key, err)
	}
	return &s, nil
}
