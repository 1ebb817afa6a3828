package record

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/catalog"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
)

// MedicalRecord is the clinical note produced for a completed visit:
// symptoms, an optional diagnosis, and the prescribed medication lines.
// At most one record links back to a given queue entry.
type MedicalRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	VisitDate time.Time `gorm:"column:visit_date;type:date;not null;index" json:"visit_date"`
	Symptoms  string    `gorm:"column:symptoms;type:text" json:"symptoms"`

	PatientID uuid.UUID        `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	Patient   *patient.Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`

	DiseaseTypeID *uuid.UUID           `gorm:"column:disease_type_id;type:uuid" json:"disease_type_id"`
	DiseaseType   *catalog.DiseaseType `gorm:"foreignKey:DiseaseTypeID" json:"disease_type,omitempty"`

	QueueEntryID *uuid.UUID `gorm:"column:queue_entry_id;type:uuid;uniqueIndex" json:"queue_entry_id"`

	AuthorID *uuid.UUID `gorm:"column:author_id;type:uuid;index" json:"author_id"`

	Lines []PrescriptionLine `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"lines"`
}

func (MedicalRecord) TableName() string {
	return "clinical.medical_records"
}

// PrescriptionLine is one medication entry within a record. A medication
// appears at most once per record.
type PrescriptionLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`

	RecordID uuid.UUID `gorm:"column:record_id;type:uuid;not null;index;uniqueIndex:ux_record_medication" json:"record_id"`

	MedicationID uuid.UUID           `gorm:"column:medication_id;type:uuid;not null;uniqueIndex:ux_record_medication" json:"medication_id"`
	Medication   *catalog.Medication `gorm:"foreignKey:MedicationID" json:"medication,omitempty"`

	Quantity int `gorm:"column:quantity;not null;check:quantity > 0" json:"quantity"`

	InstructionsID *uuid.UUID                 `gorm:"column:instructions_id;type:uuid" json:"instructions_id"`
	Instructions   *catalog.DosageInstruction `gorm:"foreignKey:InstructionsID" json:"instructions,omitempty"`
}

func (PrescriptionLine) TableName() string {
	return "clinical.prescription_lines"
}

type LineInput struct {
	MedicationID   uuid.UUID
	Quantity       int
	InstructionsID *uuid.UUID
}

type SaveRecordCommand struct {
	PatientID     uuid.UUID
	VisitDate     time.Time
	Symptoms      string
	DiseaseTypeID *uuid.UUID
	QueueEntryID  *uuid.UUID
	AuthorID      *uuid.UUID
	Lines         []LineInput
}

type ListRecordsQuery struct {
	PatientID *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

type PagedRecords struct {
	Records    []*MedicalRecord `json:"records"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}
