package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain/catalog"
	"github.com/clinicdesk/clinicdesk/internal/domain/invoice"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/record"
	"github.com/clinicdesk/clinicdesk/internal/domain/setting"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
	"github.com/clinicdesk/clinicdesk/pkg/metrics"
)

// RecordService runs the examination pipeline: writing a medical record with
// its prescription lines, keeping medication stock consistent, and deriving
// the invoice. One transaction covers the record write, every stock
// movement, and the invoice upsert; a prescription that would drive any
// stock count negative rejects the whole write.
type RecordService struct {
	records  record.Repository
	patients patient.Repository
	catalogs catalog.Repository
	invoices invoice.Repository
	settings setting.Repository
	tx       Transactor
	clinic   config.ClinicConfig
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewRecordService(
	records record.Repository,
	patients patient.Repository,
	catalogs catalog.Repository,
	invoices invoice.Repository,
	settings setting.Repository,
	tx Transactor,
	clinic config.ClinicConfig,
	m *metrics.Collector,
	log *zap.Logger,
) *RecordService {
	return &RecordService{
		records:  records,
		patients: patients,
		catalogs: catalogs,
		invoices: invoices,
		settings: settings,
		tx:       tx,
		clinic:   clinic,
		metrics:  m,
		log:      log,
	}
}

func (s *RecordService) CreateRecord(ctx context.Context, cmd *record.SaveRecordCommand) (*record.MedicalRecord, error) {
	if err := s.validateSave(cmd); err != nil {
		return nil, err
	}

	var created *record.MedicalRecord
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.patients.GetByID(ctx, cmd.PatientID); err != nil {
			return err
		}

		rec := &record.MedicalRecord{
			VisitDate:     visit.Day(cmd.VisitDate),
			Symptoms:      cmd.Symptoms,
			PatientID:     cmd.PatientID,
			DiseaseTypeID: cmd.DiseaseTypeID,
			QueueEntryID:  cmd.QueueEntryID,
			AuthorID:      cmd.AuthorID,
		}
		if err := s.records.Create(ctx, rec); err != nil {
			return err
		}

		diff := record.DiffLines(nil, cmd.Lines)
		if err := s.applyLineDiff(ctx, rec.ID, diff); err != nil {
			return err
		}

		if err := s.recomputeInvoice(ctx, rec.ID); err != nil {
			return err
		}

		var loadErr error
		created, loadErr = s.records.GetByID(ctx, rec.ID)
		return loadErr
	})
	if err != nil {
		if errors.Is(err, catalog.ErrInsufficientStock) {
			s.metrics.StockRejectionsTotal.Inc()
		}
		return nil, err
	}

	s.metrics.RecordsWrittenTotal.Inc()
	s.log.Info("medical record created",
		zap.String("record_id", created.ID.String()),
		zap.String("patient_id", created.PatientID.String()),
		zap.Int("lines", len(created.Lines)),
	)
	return created, nil
}

// UpdateRecord rewrites the header fields and reconciles the prescription
// lines against the desired set. Only the difference moves stock: an
// untouched line costs nothing, a removed line restocks, a quantity change
// moves the delta.
func (s *RecordService) UpdateRecord(ctx context.Context, id uuid.UUID, cmd *record.SaveRecordCommand) (*record.MedicalRecord, error) {
	if err := s.validateSave(cmd); err != nil {
		return nil, err
	}

	var updated *record.MedicalRecord
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		rec, err := s.records.GetByID(ctx, id)
		if err != nil {
			return err
		}

		rec.VisitDate = visit.Day(cmd.VisitDate)
		rec.Symptoms = cmd.Symptoms
		rec.DiseaseTypeID = cmd.DiseaseTypeID
		if err := s.records.Update(ctx, rec); err != nil {
			return err
		}

		existing, err := s.records.GetLines(ctx, id)
		if err != nil {
			return err
		}

		diff := record.DiffLines(existing, cmd.Lines)
		if err := s.applyLineDiff(ctx, id, diff); err != nil {
			return err
		}

		if err := s.recomputeInvoice(ctx, id); err != nil {
			return err
		}

		updated, err = s.records.GetByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, catalog.ErrInsufficientStock) {
			s.metrics.StockRejectionsTotal.Inc()
		}
		return nil, err
	}

	s.metrics.RecordsWrittenTotal.Inc()
	s.log.Info("medical record updated",
		zap.String("record_id", id.String()),
		zap.Int("lines", len(updated.Lines)),
	)
	return updated, nil
}

func (s *RecordService) GetRecord(ctx context.Context, id uuid.UUID) (*record.MedicalRecord, error) {
	return s.records.GetByID(ctx, id)
}

func (s *RecordService) ListRecords(ctx context.Context, q *record.ListRecordsQuery) (*record.PagedRecords, error) {
	return s.records.List(ctx, q)
}

func (s *RecordService) GetInvoice(ctx context.Context, recordID uuid.UUID) (*invoice.Invoice, error) {
	return s.invoices.GetByRecordID(ctx, recordID)
}

// applyLineDiff moves stock and rewrites lines for one reconciliation.
// Medications are locked in ID order so two concurrent reconciliations
// touching the same set cannot deadlock.
func (s *RecordService) applyLineDiff(ctx context.Context, recordID uuid.UUID, diff record.LineDiff) error {
	if diff.Empty() {
		return nil
	}

	type move struct {
		medicationID uuid.UUID
		apply        func(ctx context.Context) error
	}
	var moves []move

	for _, add := range diff.Added {
		add := add
		moves = append(moves, move{add.MedicationID, func(ctx context.Context) error {
			if err := s.deductStock(ctx, add.MedicationID, add.Quantity); err != nil {
				return err
			}
			return s.records.CreateLine(ctx, &record.PrescriptionLine{
				RecordID:       recordID,
				MedicationID:   add.MedicationID,
				Quantity:       add.Quantity,
				InstructionsID: add.InstructionsID,
			})
		}})
	}

	for _, rem := range diff.Removed {
		rem := rem
		moves = append(moves, move{rem.MedicationID, func(ctx context.Context) error {
			if _, err := s.catalogs.GetMedicationForUpdate(ctx, rem.MedicationID); err != nil {
				return err
			}
			if err := s.catalogs.AdjustStock(ctx, rem.MedicationID, rem.Quantity); err != nil {
				return err
			}
			return s.records.DeleteLine(ctx, rem.ID)
		}})
	}

	for _, ch := range diff.Changed {
		ch := ch
		moves = append(moves, move{ch.Existing.MedicationID, func(ctx context.Context) error {
			if ch.QuantityDelta > 0 {
				if err := s.deductStock(ctx, ch.Existing.MedicationID, ch.QuantityDelta); err != nil {
					return err
				}
			} else if ch.QuantityDelta < 0 {
				if _, err := s.catalogs.GetMedicationForUpdate(ctx, ch.Existing.MedicationID); err != nil {
					return err
				}
				if err := s.catalogs.AdjustStock(ctx, ch.Existing.MedicationID, -ch.QuantityDelta); err != nil {
					return err
				}
			}
			line := ch.Existing
			line.Quantity = ch.Desired.Quantity
			line.InstructionsID = ch.Desired.InstructionsID
			return s.records.UpdateLine(ctx, &line)
		}})
	}

	sort.Slice(moves, func(i, j int) bool {
		return moves[i].medicationID.String() < moves[j].medicationID.String()
	})

	for _, m := range moves {
		if err := m.apply(ctx); err != nil {
			return err
		}
	}
	return nil
}

// deductStock locks the medication row, verifies availability and applies
// the decrement. The caller's transaction holds the lock until commit.
func (s *RecordService) deductStock(ctx context.Context, medicationID uuid.UUID, quantity int) error {
	med, err := s.catalogs.GetMedicationForUpdate(ctx, medicationID)
	if err != nil {
		return err
	}
	if med.StockCount < quantity {
		return fmt.Errorf("%w: %s has %d, need %d",
			catalog.ErrInsufficientStock, med.Name, med.StockCount, quantity)
	}
	return s.catalogs.AdjustStock(ctx, medicationID, -quantity)
}

// recomputeInvoice derives the invoice from the record's current lines and
// the configured consultation fee, upserting the single row per record.
func (s *RecordService) recomputeInvoice(ctx context.Context, recordID uuid.UUID) error {
	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return err
	}

	fee, err := s.settings.GetValue(ctx, setting.KeyConsultationFee, s.clinic.DefaultConsultationFee)
	if err != nil {
		return err
	}

	inv := &invoice.Invoice{
		RecordID:        recordID,
		PaidAt:          rec.VisitDate,
		ConsultationFee: fee,
		MedicationTotal: invoice.MedicationSubtotal(rec.Lines),
	}
	if err := s.invoices.Upsert(ctx, inv); err != nil {
		return err
	}

	s.metrics.InvoicesComputedTotal.Inc()
	return nil
}

func (s *RecordService) validateSave(cmd *record.SaveRecordCommand) error {
	var fields []string
	if cmd.PatientID == uuid.Nil {
		fields = append(fields, "patient_id is required")
	}
	if cmd.VisitDate.IsZero() {
		fields = append(fields, "visit_date is required")
	}

	seen := make(map[uuid.UUID]struct{}, len(cmd.Lines))
	for i, l := range cmd.Lines {
		if l.MedicationID == uuid.Nil {
			fields = append(fields, fmt.Sprintf("lines[%d].medication_id is required", i))
		}
		if l.Quantity <= 0 {
			fields = append(fields, fmt.Sprintf("lines[%d].quantity must be positive", i))
		}
		if _, dup := seen[l.MedicationID]; dup {
			fields = append(fields, fmt.Sprintf("lines[%d]: medication appears more than once", i))
		}
		seen[l.MedicationID] = struct{}{}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
