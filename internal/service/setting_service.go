package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain/setting"
)

// SettingService exposes the tunable clinic parameters. Reads merge stored
// rows with the application defaults, so a fresh database still reports a
// complete set.
type SettingService struct {
	repo   setting.Repository
	clinic config.ClinicConfig
	log    *zap.Logger
}

func NewSettingService(repo setting.Repository, clinic config.ClinicConfig, log *zap.Logger) *SettingService {
	return &SettingService{repo: repo, clinic: clinic, log: log}
}

func (s *SettingService) defaultFor(key setting.Key) int64 {
	switch key {
	case setting.KeyMaxPatientsPerDay:
		return s.clinic.DefaultMaxPatientsPerDay
	case setting.KeyConsultationFee:
		return s.clinic.DefaultConsultationFee
	}
	return 0
}

// List returns every known setting with its effective value.
func (s *SettingService) List(ctx context.Context) ([]*setting.Setting, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	byKey := make(map[setting.Key]*setting.Setting, len(stored))
	for _, row := range stored {
		byKey[row.Key] = row
	}

	keys := []setting.Key{setting.KeyMaxPatientsPerDay, setting.KeyConsultationFee}
	out := make([]*setting.Setting, 0, len(keys))
	for _, k := range keys {
		if row, ok := byKey[k]; ok {
			out = append(out, row)
			continue
		}
		out = append(out, &setting.Setting{Key: k, Value: s.defaultFor(k)})
	}
	return out, nil
}

func (s *SettingService) Get(ctx context.Context, key setting.Key) (int64, error) {
	if !key.IsValid() {
		return 0, setting.ErrUnknownKey
	}
	return s.repo.GetValue(ctx, key, s.defaultFor(key))
}

func (s *SettingService) Set(ctx context.Context, key setting.Key, value int64) (*setting.Setting, error) {
	if !key.IsValid() {
		return nil, setting.ErrUnknownKey
	}
	if value <= 0 {
		return nil, setting.ErrValueNotPositive
	}

	row, err := s.repo.Set(ctx, key, value)
	if err != nil {
		return nil, err
	}

	s.log.Info("setting changed",
		zap.String("key", string(key)),
		zap.Int64("value", value),
	)
	return row, nil
}
