package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinicdesk/clinicdesk/internal/domain/report"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
)

func newReportService(repo *mockReportRepo, visits *mockVisitRepo, invoices *mockInvoiceRepo) *ReportService {
	if repo == nil {
		repo = new(mockReportRepo)
	}
	if visits == nil {
		visits = new(mockVisitRepo)
	}
	if invoices == nil {
		invoices = new(mockInvoiceRepo)
	}
	return NewReportService(repo, visits, invoices, zap.NewNop())
}

func TestDailySummary(t *testing.T) {
	visits := new(mockVisitRepo)
	invoices := new(mockInvoiceRepo)
	svc := newReportService(nil, visits, invoices)

	today := visit.Day(time.Now())
	visits.On("CountByDate", mock.Anything, today).Return(int64(17), nil)
	invoices.On("SumPaidBetween", mock.Anything, today, today.AddDate(0, 0, 1)).Return(int64(720000), nil)

	out, err := svc.DailySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(17), out.QueueCount)
	assert.Equal(t, int64(720000), out.Revenue)
	assert.Equal(t, today, out.Day)
}

func TestMonthlyRevenue_Percentages(t *testing.T) {
	repo := new(mockReportRepo)
	svc := newReportService(repo, nil, nil)

	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	repo.On("RevenueByDay", mock.Anything, 2026, time.March).Return([]report.RevenueRow{
		{Day: day1, VisitCount: 10, Revenue: 300000},
		{Day: day2, VisitCount: 5, Revenue: 100000},
	}, nil)

	out, err := svc.MonthlyRevenue(context.Background(), 2026, time.March)
	require.NoError(t, err)

	assert.Equal(t, int64(400000), out.Total)
	require.Len(t, out.Days, 2)
	assert.InDelta(t, 75.0, out.Days[0].Percentage, 0.0001)
	assert.InDelta(t, 25.0, out.Days[1].Percentage, 0.0001)
}

func TestMonthlyRevenue_EmptyMonth(t *testing.T) {
	repo := new(mockReportRepo)
	svc := newReportService(repo, nil, nil)

	repo.On("RevenueByDay", mock.Anything, 2026, time.January).Return([]report.RevenueRow{}, nil)

	out, err := svc.MonthlyRevenue(context.Background(), 2026, time.January)
	require.NoError(t, err)
	assert.Zero(t, out.Total)
	assert.Empty(t, out.Days)
}

func TestMonthlyRevenue_InvalidPeriod(t *testing.T) {
	svc := newReportService(nil, nil, nil)

	_, err := svc.MonthlyRevenue(context.Background(), 1800, time.March)
	assert.ErrorIs(t, err, report.ErrInvalidPeriod)

	_, err = svc.MonthlyRevenue(context.Background(), 2026, time.Month(13))
	assert.ErrorIs(t, err, report.ErrInvalidPeriod)
}

func TestMedicationUsage(t *testing.T) {
	repo := new(mockReportRepo)
	svc := newReportService(repo, nil, nil)

	q := report.UsageQuery{Year: 2026, Month: time.March}
	repo.On("MedicationUsage", mock.Anything, q).Return([]report.UsageRow{
		{Name: "Paracetamol", Unit: "pill", TotalQuantity: 240, PrescriptionCount: 31},
		{Name: "Amoxicillin", Unit: "capsule", TotalQuantity: 90, PrescriptionCount: 12},
	}, nil)

	out, err := svc.MedicationUsage(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, int64(240), out.Items[0].TotalQuantity)
}

func TestMedicationUsage_OptionalPeriod(t *testing.T) {
	repo := new(mockReportRepo)
	svc := newReportService(repo, nil, nil)

	repo.On("MedicationUsage", mock.Anything, report.UsageQuery{Search: "para"}).
		Return([]report.UsageRow{{Name: "Paracetamol", TotalQuantity: 900}}, nil)

	out, err := svc.MedicationUsage(context.Background(), report.UsageQuery{Search: " para "})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
}

func TestMedicationUsage_HalfPeriodRejected(t *testing.T) {
	svc := newReportService(nil, nil, nil)

	_, err := svc.MedicationUsage(context.Background(), report.UsageQuery{Year: 2026})
	assert.ErrorIs(t, err, report.ErrInvalidPeriod)
}
