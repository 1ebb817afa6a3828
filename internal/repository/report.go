package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/clinicdesk/clinicdesk/internal/domain/report"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

var _ report.Repository = (*ReportRepository)(nil)

func monthBounds(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func (r *ReportRepository) RevenueByDay(ctx context.Context, year int, month time.Month) ([]report.RevenueRow, error) {
	from, to := monthBounds(year, month)

	var rows []report.RevenueRow
	err := dbFrom(ctx, r.db).Raw(`
		SELECT mr.visit_date AS day,
		       COUNT(DISTINCT mr.id) AS visit_count,
		       COALESCE(SUM(i.consultation_fee + i.medication_total), 0) AS revenue
		FROM clinical.medical_records mr
		JOIN billing.invoices i ON i.record_id = mr.id
		WHERE mr.visit_date >= ? AND mr.visit_date < ?
		GROUP BY mr.visit_date
		ORDER BY mr.visit_date ASC`, from, to).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating revenue: %w", err)
	}
	return rows, nil
}

func (r *ReportRepository) MedicationUsage(ctx context.Context, q report.UsageQuery) ([]report.UsageRow, error) {
	where := "1=1"
	args := []any{}
	if q.Year != 0 {
		from, to := monthBounds(q.Year, q.Month)
		where += " AND mr.visit_date >= ? AND mr.visit_date < ?"
		args = append(args, from, to)
	}
	if q.Search != "" {
		where += " AND m.name ILIKE ?"
		args = append(args, "%"+q.Search+"%")
	}

	var rows []report.UsageRow
	err := dbFrom(ctx, r.db).Raw(`
		SELECT m.id AS medication_id,
		       m.name AS name,
		       u.name AS unit,
		       COALESCE(SUM(pl.quantity), 0) AS total_quantity,
		       COUNT(pl.id) AS prescription_count
		FROM clinical.prescription_lines pl
		JOIN clinical.medical_records mr ON mr.id = pl.record_id
		JOIN catalog.medications m ON m.id = pl.medication_id
		JOIN catalog.units u ON u.id = m.unit_id
		WHERE `+where+`
		GROUP BY m.id, m.name, u.name
		ORDER BY total_quantity DESC, m.name ASC`, args...).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating medication usage: %w", err)
	}
	return rows, nil
}
