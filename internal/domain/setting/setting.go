package setting

import (
	"time"
)

// Key identifies an administratively tunable numeric setting. Each key has
// at most one row; reads fall back to an application default when the row is
// absent.
type Key string

const (
	KeyMaxPatientsPerDay Key = "max_patients_per_day"
	KeyConsultationFee   Key = "base_consultation_fee"
)

func (k Key) IsValid() bool {
	switch k {
	case KeyMaxPatientsPerDay, KeyConsultationFee:
		return true
	}
	return false
}

type Setting struct {
	Key       Key       `gorm:"column:key;type:varchar(50);primaryKey" json:"key"`
	Value     int64     `gorm:"column:value;not null;check:value > 0" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Setting) TableName() string {
	return "catalog.settings"
}
