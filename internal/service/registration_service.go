package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/setting"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
	"github.com/clinicdesk/clinicdesk/pkg/metrics"
)

const minBirthYear = 1900

// RegistrationService owns the daily visit queue: public appointment
// registration, the queue listing, and entry management. The daily cap is
// enforced under a per-day advisory lock inside the transaction, so
// concurrent registrations cannot oversubscribe a day; the
// one-slot-per-patient-per-day rule is the unique (visit_date, patient)
// constraint.
type RegistrationService struct {
	visits   visit.Repository
	patients patient.Repository
	settings setting.Repository
	tx       Transactor
	clinic   config.ClinicConfig
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewRegistrationService(
	visits visit.Repository,
	patients patient.Repository,
	settings setting.Repository,
	tx Transactor,
	clinic config.ClinicConfig,
	m *metrics.Collector,
	log *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		visits:   visits,
		patients: patients,
		settings: settings,
		tx:       tx,
		clinic:   clinic,
		metrics:  m,
		log:      log,
	}
}

func (s *RegistrationService) Register(ctx context.Context, cmd *visit.RegisterCommand) (*visit.QueueEntry, error) {
	if err := s.validateRegister(cmd); err != nil {
		return nil, err
	}

	var entry *visit.QueueEntry
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.visits.LockDate(ctx, cmd.VisitDate); err != nil {
			return err
		}

		capacity, err := s.settings.GetValue(ctx, setting.KeyMaxPatientsPerDay, s.clinic.DefaultMaxPatientsPerDay)
		if err != nil {
			return err
		}

		count, err := s.visits.CountByDate(ctx, cmd.VisitDate)
		if err != nil {
			return err
		}
		if count >= capacity {
			return visit.ErrCapacityExceeded
		}

		p, err := s.findOrCreatePatient(ctx, cmd)
		if err != nil {
			return err
		}

		entry = &visit.QueueEntry{
			VisitDate: visit.Day(cmd.VisitDate),
			PatientID: p.ID,
		}
		if err := s.visits.Create(ctx, entry); err != nil {
			return err
		}
		entry.Patient = p
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, visit.ErrCapacityExceeded):
			s.metrics.RegistrationsRejected.WithLabelValues("capacity").Inc()
		case errors.Is(err, visit.ErrAlreadyQueued):
			s.metrics.RegistrationsRejected.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	s.metrics.RegistrationsTotal.Inc()
	s.log.Info("appointment registered",
		zap.String("entry_id", entry.ID.String()),
		zap.String("patient_id", entry.PatientID.String()),
		zap.Time("visit_date", entry.VisitDate),
	)
	return entry, nil
}

// findOrCreatePatient matches an existing patient by (full_name, birth_year,
// sex) to keep repeat visitors from multiplying, creating one otherwise.
func (s *RegistrationService) findOrCreatePatient(ctx context.Context, cmd *visit.RegisterCommand) (*patient.Patient, error) {
	p := &patient.Patient{
		FullName:  cmd.FullName,
		Address:   cmd.Address,
		BirthYear: cmd.BirthYear,
		Sex:       cmd.Sex,
	}
	p.Normalize()

	existing, err := s.patients.FindByIdentity(ctx, p.FullName, p.BirthYear, p.Sex)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, patient.ErrPatientNotFound) {
		return nil, err
	}

	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *RegistrationService) validateRegister(cmd *visit.RegisterCommand) error {
	var fields []string
	if cmd.FullName == "" {
		fields = append(fields, "full_name is required")
	}
	if cmd.BirthYear < minBirthYear || cmd.BirthYear > time.Now().Year() {
		fields = append(fields, fmt.Sprintf("birth_year must be between %d and %d", minBirthYear, time.Now().Year()))
	}
	if !cmd.Sex.IsValid() {
		fields = append(fields, "sex must be one of M, F, O")
	}
	if cmd.VisitDate.IsZero() {
		fields = append(fields, "visit_date is required")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *RegistrationService) GetEntry(ctx context.Context, id uuid.UUID) (*visit.QueueEntry, error) {
	return s.visits.GetByID(ctx, id)
}

func (s *RegistrationService) ListQueue(ctx context.Context, q *visit.ListQueueQuery) ([]*visit.QueueEntryView, error) {
	return s.visits.List(ctx, q)
}

// MoveEntry reschedules an entry to another date, re-checking the target
// day's capacity. A move within the entry's own day adds no slot, so it
// skips the check.
func (s *RegistrationService) MoveEntry(ctx context.Context, id uuid.UUID, date time.Time) (*visit.QueueEntry, error) {
	if date.IsZero() {
		return nil, visit.ErrDateRequired
	}

	var moved *visit.QueueEntry
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		current, err := s.visits.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if !visit.Day(date).Equal(visit.Day(current.VisitDate)) {
			if err := s.visits.LockDate(ctx, date); err != nil {
				return err
			}
			capacity, err := s.settings.GetValue(ctx, setting.KeyMaxPatientsPerDay, s.clinic.DefaultMaxPatientsPerDay)
			if err != nil {
				return err
			}
			count, err := s.visits.CountByDate(ctx, date)
			if err != nil {
				return err
			}
			if count >= capacity {
				return visit.ErrCapacityExceeded
			}
		}

		moved, err = s.visits.UpdateDate(ctx, id, date)
		return err
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func (s *RegistrationService) CancelEntry(ctx context.Context, id uuid.UUID) error {
	return s.visits.Delete(ctx, id)
}
