package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain/catalog"
	"github.com/clinicdesk/clinicdesk/internal/domain/invoice"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/record"
	"github.com/clinicdesk/clinicdesk/internal/domain/setting"
)

type recordFixture struct {
	records  *mockRecordRepo
	patients *mockPatientRepo
	catalogs *mockCatalogRepo
	invoices *mockInvoiceRepo
	settings *mockSettingRepo
	svc      *RecordService
}

func newRecordFixture() *recordFixture {
	f := &recordFixture{
		records:  new(mockRecordRepo),
		patients: new(mockPatientRepo),
		catalogs: new(mockCatalogRepo),
		invoices: new(mockInvoiceRepo),
		settings: new(mockSettingRepo),
	}
	f.svc = NewRecordService(
		f.records,
		f.patients,
		f.catalogs,
		f.invoices,
		f.settings,
		fakeTx{},
		config.ClinicConfig{DefaultMaxPatientsPerDay: 40, DefaultConsultationFee: 30000},
		newTestMetrics(),
		zap.NewNop(),
	)
	return f
}

func TestCreateRecord_DeductsStockAndComputesInvoice(t *testing.T) {
	f := newRecordFixture()

	patientID := uuid.New()
	paraID := uuid.New()
	amoxID := uuid.New()
	visitDate := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	cmd := &record.SaveRecordCommand{
		PatientID: patientID,
		VisitDate: visitDate,
		Symptoms:  "fever, cough",
		Lines: []record.LineInput{
			{MedicationID: paraID, Quantity: 5},
			{MedicationID: amoxID, Quantity: 2},
		},
	}

	f.patients.On("GetByID", mock.Anything, patientID).Return(&patient.Patient{ID: patientID}, nil)
	f.records.On("Create", mock.Anything, mock.AnythingOfType("*record.MedicalRecord")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*record.MedicalRecord).ID = uuid.New()
		}).Return(nil)

	f.catalogs.On("GetMedicationForUpdate", mock.Anything, paraID).
		Return(&catalog.Medication{ID: paraID, Name: "Paracetamol", UnitPrice: 1000, StockCount: 50}, nil)
	f.catalogs.On("GetMedicationForUpdate", mock.Anything, amoxID).
		Return(&catalog.Medication{ID: amoxID, Name: "Amoxicillin", UnitPrice: 2500, StockCount: 20}, nil)
	f.catalogs.On("AdjustStock", mock.Anything, paraID, -5).Return(nil)
	f.catalogs.On("AdjustStock", mock.Anything, amoxID, -2).Return(nil)
	f.records.On("CreateLine", mock.Anything, mock.AnythingOfType("*record.PrescriptionLine")).Return(nil)

	loaded := &record.MedicalRecord{
		PatientID: patientID,
		VisitDate: visitDate,
		Lines: []record.PrescriptionLine{
			{MedicationID: paraID, Quantity: 5, Medication: &catalog.Medication{UnitPrice: 1000}},
			{MedicationID: amoxID, Quantity: 2, Medication: &catalog.Medication{UnitPrice: 2500}},
		},
	}
	f.records.On("GetByID", mock.Anything, mock.Anything).Return(loaded, nil)
	f.settings.On("GetValue", mock.Anything, setting.KeyConsultationFee, int64(30000)).Return(int64(30000), nil)

	f.invoices.On("Upsert", mock.Anything, mock.MatchedBy(func(inv *invoice.Invoice) bool {
		return inv.ConsultationFee == 30000 && inv.MedicationTotal == 10000
	})).Return(nil)

	rec, err := f.svc.CreateRecord(context.Background(), cmd)
	require.NoError(t, err)
	assert.Len(t, rec.Lines, 2)

	f.catalogs.AssertExpectations(t)
	f.invoices.AssertExpectations(t)
}

func TestCreateRecord_InsufficientStockRejectsWrite(t *testing.T) {
	f := newRecordFixture()

	patientID := uuid.New()
	medID := uuid.New()

	cmd := &record.SaveRecordCommand{
		PatientID: patientID,
		VisitDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Lines:     []record.LineInput{{MedicationID: medID, Quantity: 10}},
	}

	f.patients.On("GetByID", mock.Anything, patientID).Return(&patient.Patient{ID: patientID}, nil)
	f.records.On("Create", mock.Anything, mock.AnythingOfType("*record.MedicalRecord")).Return(nil)
	f.catalogs.On("GetMedicationForUpdate", mock.Anything, medID).
		Return(&catalog.Medication{ID: medID, Name: "Ibuprofen", StockCount: 3}, nil)

	_, err := f.svc.CreateRecord(context.Background(), cmd)
	assert.ErrorIs(t, err, catalog.ErrInsufficientStock)

	f.catalogs.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
	f.invoices.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCreateRecord_Validation(t *testing.T) {
	f := newRecordFixture()
	medID := uuid.New()

	tests := []struct {
		name string
		cmd  *record.SaveRecordCommand
	}{
		{
			"missing patient",
			&record.SaveRecordCommand{VisitDate: time.Now()},
		},
		{
			"zero quantity",
			&record.SaveRecordCommand{
				PatientID: uuid.New(),
				VisitDate: time.Now(),
				Lines:     []record.LineInput{{MedicationID: medID, Quantity: 0}},
			},
		},
		{
			"duplicate medication",
			&record.SaveRecordCommand{
				PatientID: uuid.New(),
				VisitDate: time.Now(),
				Lines: []record.LineInput{
					{MedicationID: medID, Quantity: 1},
					{MedicationID: medID, Quantity: 2},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateRecord(context.Background(), tt.cmd)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestUpdateRecord_OnlyDeltaMovesStock(t *testing.T) {
	f := newRecordFixture()

	recordID := uuid.New()
	patientID := uuid.New()
	keptID := uuid.New()
	goneID := uuid.New()
	visitDate := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	existingKept := record.PrescriptionLine{ID: uuid.New(), RecordID: recordID, MedicationID: keptID, Quantity: 5}
	existingGone := record.PrescriptionLine{ID: uuid.New(), RecordID: recordID, MedicationID: goneID, Quantity: 4}

	// Desired: kept line grows 5 -> 8, the other line disappears.
	cmd := &record.SaveRecordCommand{
		PatientID: patientID,
		VisitDate: visitDate,
		Symptoms:  "follow-up",
		Lines:     []record.LineInput{{MedicationID: keptID, Quantity: 8}},
	}

	stored := &record.MedicalRecord{ID: recordID, PatientID: patientID, VisitDate: visitDate,
		Lines: []record.PrescriptionLine{
			{MedicationID: keptID, Quantity: 8, Medication: &catalog.Medication{UnitPrice: 500}},
		}}
	f.records.On("GetByID", mock.Anything, recordID).Return(stored, nil)
	f.records.On("Update", mock.Anything, mock.AnythingOfType("*record.MedicalRecord")).Return(nil)
	f.records.On("GetLines", mock.Anything, recordID).
		Return([]record.PrescriptionLine{existingKept, existingGone}, nil)

	f.catalogs.On("GetMedicationForUpdate", mock.Anything, keptID).
		Return(&catalog.Medication{ID: keptID, StockCount: 10}, nil)
	f.catalogs.On("AdjustStock", mock.Anything, keptID, -3).Return(nil)
	f.records.On("UpdateLine", mock.Anything, mock.AnythingOfType("*record.PrescriptionLine")).Return(nil)

	f.catalogs.On("GetMedicationForUpdate", mock.Anything, goneID).
		Return(&catalog.Medication{ID: goneID, StockCount: 0}, nil)
	f.catalogs.On("AdjustStock", mock.Anything, goneID, 4).Return(nil)
	f.records.On("DeleteLine", mock.Anything, existingGone.ID).Return(nil)

	f.settings.On("GetValue", mock.Anything, setting.KeyConsultationFee, int64(30000)).Return(int64(30000), nil)
	f.invoices.On("Upsert", mock.Anything, mock.MatchedBy(func(inv *invoice.Invoice) bool {
		return inv.MedicationTotal == 4000
	})).Return(nil)

	_, err := f.svc.UpdateRecord(context.Background(), recordID, cmd)
	require.NoError(t, err)

	f.catalogs.AssertExpectations(t)
	f.records.AssertExpectations(t)
	f.invoices.AssertExpectations(t)
}

func TestUpdateRecord_NoChangesMovesNothing(t *testing.T) {
	f := newRecordFixture()

	recordID := uuid.New()
	patientID := uuid.New()
	medID := uuid.New()
	visitDate := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	line := record.PrescriptionLine{ID: uuid.New(), RecordID: recordID, MedicationID: medID, Quantity: 5}

	cmd := &record.SaveRecordCommand{
		PatientID: patientID,
		VisitDate: visitDate,
		Lines:     []record.LineInput{{MedicationID: medID, Quantity: 5}},
	}

	stored := &record.MedicalRecord{ID: recordID, PatientID: patientID, VisitDate: visitDate,
		Lines: []record.PrescriptionLine{
			{MedicationID: medID, Quantity: 5, Medication: &catalog.Medication{UnitPrice: 1000}},
		}}
	f.records.On("GetByID", mock.Anything, recordID).Return(stored, nil)
	f.records.On("Update", mock.Anything, mock.AnythingOfType("*record.MedicalRecord")).Return(nil)
	f.records.On("GetLines", mock.Anything, recordID).Return([]record.PrescriptionLine{line}, nil)
	f.settings.On("GetValue", mock.Anything, setting.KeyConsultationFee, int64(30000)).Return(int64(30000), nil)
	f.invoices.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.UpdateRecord(context.Background(), recordID, cmd)
	require.NoError(t, err)

	f.catalogs.AssertNotCalled(t, "GetMedicationForUpdate", mock.Anything, mock.Anything)
	f.catalogs.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
}
