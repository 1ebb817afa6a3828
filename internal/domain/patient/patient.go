package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
	SexOther  Sex = "O"
)

func (s Sex) IsValid() bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

// Patient is an identity record. Patients are never hard-deleted; historical
// visits and records keep referencing them.
type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	FullName  string `gorm:"column:full_name;type:varchar(100);not null;index:ix_patients_identity" json:"full_name"`
	Address   string `gorm:"column:address;type:varchar(255)" json:"address"`
	BirthYear int    `gorm:"column:birth_year;not null;index:ix_patients_identity" json:"birth_year"`
	Sex       Sex    `gorm:"column:sex;type:varchar(1);index:ix_patients_identity" json:"sex"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

func (p *Patient) Normalize() {
	p.FullName = strings.TrimSpace(p.FullName)
	p.Address = strings.TrimSpace(p.Address)
}

type UpdatePatientCommand struct {
	FullName  *string
	Address   *string
	BirthYear *int
	Sex       *Sex
}

type ListPatientsQuery struct {
	// Search matches a substring of the full name, case-insensitive.
	Search   string
	Page     int
	PageSize int
}

type PagedPatients struct {
	Patients   []*Patient `json:"patients"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
