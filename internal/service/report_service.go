package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clinicdesk/clinicdesk/internal/domain/invoice"
	"github.com/clinicdesk/clinicdesk/internal/domain/report"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
)

type ReportService struct {
	repo     report.Repository
	visits   visit.Repository
	invoices invoice.Repository
	log      *zap.Logger
}

func NewReportService(repo report.Repository, visits visit.Repository, invoices invoice.Repository, log *zap.Logger) *ReportService {
	return &ReportService{repo: repo, visits: visits, invoices: invoices, log: log}
}

func validPeriod(year int, month time.Month) bool {
	return year >= 2000 && year <= 2100 && month >= time.January && month <= time.December
}

// DailySummary reports today's queue length and the revenue of invoices
// dated today.
func (s *ReportService) DailySummary(ctx context.Context) (*report.DailySummary, error) {
	today := visit.Day(time.Now())

	count, err := s.visits.CountByDate(ctx, today)
	if err != nil {
		return nil, err
	}

	revenue, err := s.invoices.SumPaidBetween(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	return &report.DailySummary{
		Day:        today,
		QueueCount: count,
		Revenue:    revenue,
	}, nil
}

// MonthlyRevenue aggregates revenue per day over the month and annotates
// each day with its share of the monthly total. An empty month reports a
// zero total and zero percentages rather than dividing by zero.
func (s *ReportService) MonthlyRevenue(ctx context.Context, year int, month time.Month) (*report.MonthlyRevenueReport, error) {
	if !validPeriod(year, month) {
		return nil, report.ErrInvalidPeriod
	}

	rows, err := s.repo.RevenueByDay(ctx, year, month)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, row := range rows {
		total += row.Revenue
	}

	days := make([]report.DailyRevenue, 0, len(rows))
	for _, row := range rows {
		var pct float64
		if total > 0 {
			pct = float64(row.Revenue) / float64(total) * 100
		}
		days = append(days, report.DailyRevenue{RevenueRow: row, Percentage: pct})
	}

	return &report.MonthlyRevenueReport{
		Year:  year,
		Month: month,
		Total: total,
		Days:  days,
	}, nil
}

// MedicationUsage aggregates dispensed quantities. The period filter is
// optional, but year and month must be given together.
func (s *ReportService) MedicationUsage(ctx context.Context, q report.UsageQuery) (*report.MedicationUsageReport, error) {
	q.Search = strings.TrimSpace(q.Search)

	if q.Year != 0 || q.Month != 0 {
		if !validPeriod(q.Year, q.Month) {
			return nil, report.ErrInvalidPeriod
		}
	}

	rows, err := s.repo.MedicationUsage(ctx, q)
	if err != nil {
		return nil, err
	}

	return &report.MedicationUsageReport{
		Year:  q.Year,
		Month: q.Month,
		Items: rows,
	}, nil
}
