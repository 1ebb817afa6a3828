package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
)

// PatientService reads and corrects patient identity records. Patients are
// created through registration, never deleted; history keeps pointing at
// them.
type PatientService struct {
	repo patient.Repository
	log  *zap.Logger
}

func NewPatientService(repo patient.Repository, log *zap.Logger) *PatientService {
	return &PatientService{repo: repo, log: log}
}

func (s *PatientService) Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PatientService) List(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	return s.repo.List(ctx, q)
}

func (s *PatientService) Update(ctx context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	var fields []string
	if cmd.FullName != nil {
		trimmed := strings.TrimSpace(*cmd.FullName)
		if trimmed == "" {
			fields = append(fields, "full_name must not be empty")
		}
		cmd.FullName = &trimmed
	}
	if cmd.BirthYear != nil && (*cmd.BirthYear < minBirthYear || *cmd.BirthYear > time.Now().Year()) {
		fields = append(fields, "birth_year out of range")
	}
	if cmd.Sex != nil && !cmd.Sex.IsValid() {
		fields = append(fields, "sex must be one of M, F, O")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	updated, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.log.Info("patient updated", zap.String("patient_id", id.String()))
	return updated, nil
}
