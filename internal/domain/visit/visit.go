package visit

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
)

// QueueEntry is one slot in the daily visit queue: a scheduled or walk-in
// visit for a patient on a specific date. A patient holds at most one slot
// per date, and the number of slots per date is bounded by the
// max_patients_per_day setting.
type QueueEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	VisitDate time.Time `gorm:"column:visit_date;type:date;not null;index;uniqueIndex:ux_queue_date_patient" json:"visit_date"`

	PatientID uuid.UUID        `gorm:"column:patient_id;type:uuid;not null;uniqueIndex:ux_queue_date_patient" json:"patient_id"`
	Patient   *patient.Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (QueueEntry) TableName() string {
	return "clinical.visit_queue"
}

// Day truncates a timestamp to the date it represents, in UTC. All queue
// arithmetic compares dates at this granularity.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RegisterCommand is the public appointment-registration payload. The
// patient is matched or created by (full_name, birth_year, sex).
type RegisterCommand struct {
	FullName  string
	BirthYear int
	Sex       patient.Sex
	Address   string
	VisitDate time.Time
}

// QueueEntryView decorates an entry with whether a medical record has been
// produced for it yet.
type QueueEntryView struct {
	QueueEntry
	Examined bool `json:"examined"`
}

type ListQueueQuery struct {
	VisitDate *time.Time
}
