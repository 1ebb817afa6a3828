package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinicdesk/clinicdesk/internal/domain/catalog"
	"github.com/clinicdesk/clinicdesk/internal/domain/record"
)

func TestMedicationSubtotal(t *testing.T) {
	tests := []struct {
		name  string
		lines []record.PrescriptionLine
		want  int64
	}{
		{
			name:  "no lines",
			lines: nil,
			want:  0,
		},
		{
			// base fee 50000; 5 x 1000 + 2 x 2500 = 10000
			name: "two medications",
			lines: []record.PrescriptionLine{
				{Quantity: 5, Medication: &catalog.Medication{UnitPrice: 1000}},
				{Quantity: 2, Medication: &catalog.Medication{UnitPrice: 2500}},
			},
			want: 10000,
		},
		{
			name: "missing medication contributes zero",
			lines: []record.PrescriptionLine{
				{Quantity: 3, Medication: nil},
				{Quantity: 2, Medication: &catalog.Medication{UnitPrice: 700}},
			},
			want: 1400,
		},
		{
			name: "zero priced medication",
			lines: []record.PrescriptionLine{
				{Quantity: 10, Medication: &catalog.Medication{UnitPrice: 0}},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MedicationSubtotal(tt.lines))
		})
	}
}

func TestInvoiceTotal(t *testing.T) {
	inv := &Invoice{ConsultationFee: 50000, MedicationTotal: 10000}
	assert.Equal(t, int64(60000), inv.Total())
}
