package catalog

import (
	"time"

	"github.com/google/uuid"
)

// DiseaseType is a diagnosis category referenced by medical records.
type DiseaseType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Name string `gorm:"column:name;type:varchar(100);uniqueIndex;not null" json:"name"`
}

func (DiseaseType) TableName() string {
	return "catalog.disease_types"
}

// Unit is a unit of measure for medications (pill, bottle, ...).
type Unit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Name string `gorm:"column:name;type:varchar(50);uniqueIndex;not null" json:"name"`
}

func (Unit) TableName() string {
	return "catalog.units"
}

// DosageInstruction is a reusable "how to take it" phrase attached to
// prescription lines.
type DosageInstruction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Name string `gorm:"column:name;type:varchar(100);uniqueIndex;not null" json:"name"`
}

func (DosageInstruction) TableName() string {
	return "catalog.dosage_instructions"
}

// Medication carries a zero-decimal unit price and the live stock count.
// Stock is only ever mutated by the prescription pipeline, inside the same
// transaction as the line writes.
type Medication struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Name   string    `gorm:"column:name;type:varchar(100);uniqueIndex;not null" json:"name"`
	UnitID uuid.UUID `gorm:"column:unit_id;type:uuid;not null" json:"unit_id"`
	Unit   *Unit     `gorm:"foreignKey:UnitID" json:"unit,omitempty"`

	UnitPrice  int64 `gorm:"column:unit_price;not null;default:0;check:unit_price >= 0" json:"unit_price"`
	StockCount int   `gorm:"column:stock_count;not null;default:0;check:stock_count >= 0" json:"stock_count"`

	DefaultInstructionsID *uuid.UUID         `gorm:"column:default_instructions_id;type:uuid" json:"default_instructions_id"`
	DefaultInstructions   *DosageInstruction `gorm:"foreignKey:DefaultInstructionsID" json:"default_instructions,omitempty"`

	ExpiryDate *time.Time `gorm:"column:expiry_date" json:"expiry_date"`
}

func (Medication) TableName() string {
	return "catalog.medications"
}

type CreateMedicationCommand struct {
	Name                  string
	UnitID                uuid.UUID
	UnitPrice             int64
	StockCount            int
	DefaultInstructionsID *uuid.UUID
	ExpiryDate            *time.Time
}

type UpdateMedicationCommand struct {
	Name                  *string
	UnitID                *uuid.UUID
	UnitPrice             *int64
	StockCount            *int
	DefaultInstructionsID *uuid.UUID
	ExpiryDate            *time.Time
}

// ListMedicationsQuery filters by name substring (case-insensitive).
type ListMedicationsQuery struct {
	Search string
}
