package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/record"
)

// Invoice is the derived bill for a medical record: the configured
// consultation fee plus the medication subtotal. Exactly one invoice exists
// per record; the pipeline upserts it whenever the record's lines change.
// Amounts are zero-decimal currency.
type Invoice struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	RecordID uuid.UUID `gorm:"column:record_id;type:uuid;not null;uniqueIndex" json:"record_id"`

	PaidAt time.Time `gorm:"column:paid_at;not null;index" json:"paid_at"`

	ConsultationFee int64 `gorm:"column:consultation_fee;not null" json:"consultation_fee"`
	MedicationTotal int64 `gorm:"column:medication_total;not null" json:"medication_total"`
}

func (Invoice) TableName() string {
	return "billing.invoices"
}

func (i *Invoice) Total() int64 {
	return i.ConsultationFee + i.MedicationTotal
}

// MedicationSubtotal sums quantity x unit price over a record's lines. Lines
// whose medication is not loaded contribute zero rather than failing; the
// total can therefore only be as complete as the preload that produced the
// lines.
func MedicationSubtotal(lines []record.PrescriptionLine) int64 {
	var total int64
	for _, l := range lines {
		if l.Medication == nil {
			continue
		}
		total += int64(l.Quantity) * l.Medication.UnitPrice
	}
	return total
}
