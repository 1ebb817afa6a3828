package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/internal/domain/catalog"
	"github.com/clinicdesk/clinicdesk/internal/domain/invoice"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/record"
	"github.com/clinicdesk/clinicdesk/internal/domain/report"
	"github.com/clinicdesk/clinicdesk/internal/domain/setting"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
	"github.com/clinicdesk/clinicdesk/pkg/metrics"
)

var collectorSeq int64

// newTestMetrics builds a collector with a unique namespace so tests do not
// collide on the default Prometheus registry.
func newTestMetrics() *metrics.Collector {
	return metrics.NewCollector(fmt.Sprintf("test%d", atomic.AddInt64(&collectorSeq, 1)))
}

// fakeTx runs the closure directly; transactional semantics are the
// repositories' concern and out of scope for service tests.
type fakeTx struct{}

func (fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockPatientRepo struct{ mock.Mock }

func (m *mockPatientRepo) Create(ctx context.Context, p *patient.Patient) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patient.Patient), args.Error(1)
}

func (m *mockPatientRepo) FindByIdentity(ctx context.Context, fullName string, birthYear int, sex patient.Sex) (*patient.Patient, error) {
	args := m.Called(ctx, fullName, birthYear, sex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patient.Patient), args.Error(1)
}

func (m *mockPatientRepo) Update(ctx context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	args := m.Called(ctx, id, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patient.Patient), args.Error(1)
}

func (m *mockPatientRepo) List(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patient.PagedPatients), args.Error(1)
}

type mockVisitRepo struct{ mock.Mock }

func (m *mockVisitRepo) Create(ctx context.Context, e *visit.QueueEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockVisitRepo) GetByID(ctx context.Context, id uuid.UUID) (*visit.QueueEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*visit.QueueEntry), args.Error(1)
}

func (m *mockVisitRepo) LockDate(ctx context.Context, date time.Time) error {
	return m.Called(ctx, date).Error(0)
}

func (m *mockVisitRepo) CountByDate(ctx context.Context, date time.Time) (int64, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockVisitRepo) List(ctx context.Context, q *visit.ListQueueQuery) ([]*visit.QueueEntryView, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*visit.QueueEntryView), args.Error(1)
}

func (m *mockVisitRepo) UpdateDate(ctx context.Context, id uuid.UUID, date time.Time) (*visit.QueueEntry, error) {
	args := m.Called(ctx, id, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*visit.QueueEntry), args.Error(1)
}

func (m *mockVisitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockSettingRepo struct{ mock.Mock }

func (m *mockSettingRepo) List(ctx context.Context) ([]*setting.Setting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*setting.Setting), args.Error(1)
}

func (m *mockSettingRepo) GetValue(ctx context.Context, key setting.Key, fallback int64) (int64, error) {
	args := m.Called(ctx, key, fallback)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSettingRepo) Set(ctx context.Context, key setting.Key, value int64) (*setting.Setting, error) {
	args := m.Called(ctx, key, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*setting.Setting), args.Error(1)
}

type mockCatalogRepo struct{ mock.Mock }

func (m *mockCatalogRepo) ListDiseaseTypes(ctx context.Context) ([]*catalog.DiseaseType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.DiseaseType), args.Error(1)
}

func (m *mockCatalogRepo) CreateDiseaseType(ctx context.Context, d *catalog.DiseaseType) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockCatalogRepo) UpdateDiseaseType(ctx context.Context, id uuid.UUID, name string) (*catalog.DiseaseType, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.DiseaseType), args.Error(1)
}

func (m *mockCatalogRepo) DeleteDiseaseType(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogRepo) ListUnits(ctx context.Context) ([]*catalog.Unit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Unit), args.Error(1)
}

func (m *mockCatalogRepo) CreateUnit(ctx context.Context, u *catalog.Unit) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockCatalogRepo) UpdateUnit(ctx context.Context, id uuid.UUID, name string) (*catalog.Unit, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Unit), args.Error(1)
}

func (m *mockCatalogRepo) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogRepo) ListInstructions(ctx context.Context) ([]*catalog.DosageInstruction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.DosageInstruction), args.Error(1)
}

func (m *mockCatalogRepo) CreateInstruction(ctx context.Context, i *catalog.DosageInstruction) error {
	return m.Called(ctx, i).Error(0)
}

func (m *mockCatalogRepo) UpdateInstruction(ctx context.Context, id uuid.UUID, name string) (*catalog.DosageInstruction, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.DosageInstruction), args.Error(1)
}

func (m *mockCatalogRepo) DeleteInstruction(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogRepo) ListMedications(ctx context.Context, q *catalog.ListMedicationsQuery) ([]*catalog.Medication, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Medication), args.Error(1)
}

func (m *mockCatalogRepo) GetMedication(ctx context.Context, id uuid.UUID) (*catalog.Medication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Medication), args.Error(1)
}

func (m *mockCatalogRepo) CreateMedication(ctx context.Context, med *catalog.Medication) error {
	return m.Called(ctx, med).Error(0)
}

func (m *mockCatalogRepo) UpdateMedication(ctx context.Context, id uuid.UUID, cmd *catalog.UpdateMedicationCommand) (*catalog.Medication, error) {
	args := m.Called(ctx, id, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Medication), args.Error(1)
}

func (m *mockCatalogRepo) DeleteMedication(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogRepo) GetMedicationForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Medication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Medication), args.Error(1)
}

func (m *mockCatalogRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	return m.Called(ctx, id, delta).Error(0)
}

type mockRecordRepo struct{ mock.Mock }

func (m *mockRecordRepo) Create(ctx context.Context, r *record.MedicalRecord) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*record.MedicalRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.MedicalRecord), args.Error(1)
}

func (m *mockRecordRepo) Update(ctx context.Context, r *record.MedicalRecord) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRecordRepo) List(ctx context.Context, q *record.ListRecordsQuery) (*record.PagedRecords, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.PagedRecords), args.Error(1)
}

func (m *mockRecordRepo) CreateLine(ctx context.Context, l *record.PrescriptionLine) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockRecordRepo) UpdateLine(ctx context.Context, l *record.PrescriptionLine) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockRecordRepo) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRecordRepo) GetLines(ctx context.Context, recordID uuid.UUID) ([]record.PrescriptionLine, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]record.PrescriptionLine), args.Error(1)
}

type mockInvoiceRepo struct{ mock.Mock }

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) GetByRecordID(ctx context.Context, recordID uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) Upsert(ctx context.Context, inv *invoice.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *mockInvoiceRepo) List(ctx context.Context, page, pageSize int) ([]*invoice.Invoice, int64, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*invoice.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *mockInvoiceRepo) SumPaidBetween(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

type mockReportRepo struct{ mock.Mock }

func (m *mockReportRepo) RevenueByDay(ctx context.Context, year int, month time.Month) ([]report.RevenueRow, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.RevenueRow), args.Error(1)
}

func (m *mockReportRepo) MedicationUsage(ctx context.Context, q report.UsageQuery) ([]report.UsageRow, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.UsageRow), args.Error(1)
}

type mockAccountRepo struct{ mock.Mock }

func (m *mockAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepo) Update(ctx context.Context, id uuid.UUID, cmd *domain.UpdateAccountCommand) (*domain.Account, error) {
	args := m.Called(ctx, id, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *mockAccountRepo) RecordLoginAttempt(ctx context.Context, id uuid.UUID, failedCount int, lockedUntil *time.Time, success bool) error {
	return m.Called(ctx, id, failedCount, lockedUntil, success).Error(0)
}

func (m *mockAccountRepo) List(ctx context.Context, q *domain.ListAccountsQuery) (*domain.PagedAccounts, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PagedAccounts), args.Error(1)
}

func (m *mockAccountRepo) ListGroups(ctx context.Context) ([]*domain.RoleGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RoleGroup), args.Error(1)
}

func (m *mockAccountRepo) GetGroup(ctx context.Context, id uuid.UUID) (*domain.RoleGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoleGroup), args.Error(1)
}

func (m *mockAccountRepo) CreateGroup(ctx context.Context, g *domain.RoleGroup) error {
	return m.Called(ctx, g).Error(0)
}

func (m *mockAccountRepo) UpdateGroup(ctx context.Context, id uuid.UUID, name string, permissions []domain.Permission) (*domain.RoleGroup, error) {
	args := m.Called(ctx, id, name, permissions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoleGroup), args.Error(1)
}

func (m *mockAccountRepo) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
