// Package report defines the read-only monthly reporting queries: revenue
// per day and medication usage. Reports are derived entirely from invoices,
// medical records and prescription lines; nothing here mutates state.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidPeriod = errors.New("invalid report period")

// DailySummary is the dashboard headline for a single day: how many
// patients are queued and how much revenue the day's invoices add up to.
type DailySummary struct {
	Day        time.Time `json:"day"`
	QueueCount int64     `json:"queue_count"`
	Revenue    int64     `json:"revenue"`
}

// RevenueRow is one day's aggregate inside a monthly revenue report.
type RevenueRow struct {
	Day        time.Time `json:"day"`
	VisitCount int64     `json:"visit_count"`
	Revenue    int64     `json:"revenue"`
}

// DailyRevenue decorates a RevenueRow with its share of the month's total.
type DailyRevenue struct {
	RevenueRow
	Percentage float64 `json:"percentage"`
}

type MonthlyRevenueReport struct {
	Year  int            `json:"year"`
	Month time.Month     `json:"month"`
	Total int64          `json:"total"`
	Days  []DailyRevenue `json:"days"`
}

// UsageRow is one medication's aggregate over a month: how much was
// prescribed in total and on how many prescriptions it appeared.
type UsageRow struct {
	MedicationID      uuid.UUID `json:"medication_id"`
	Name              string    `json:"name"`
	Unit              string    `json:"unit"`
	TotalQuantity     int64     `json:"total_quantity"`
	PrescriptionCount int64     `json:"prescription_count"`
}

type MedicationUsageReport struct {
	Year  int        `json:"year,omitempty"`
	Month time.Month `json:"month,omitempty"`
	Items []UsageRow `json:"items"`
}

// UsageQuery filters the medication usage aggregation. A zero Year means
// no period filter; Search narrows by medication name substring.
type UsageQuery struct {
	Year   int
	Month  time.Month
	Search string
}

type Repository interface {
	// RevenueByDay returns one row per day with at least one invoice in the
	// given month, ordered by day.
	RevenueByDay(ctx context.Context, year int, month time.Month) ([]RevenueRow, error)

	// MedicationUsage aggregates prescription lines matching the query,
	// ordered by total quantity descending.
	MedicationUsage(ctx context.Context, q UsageQuery) ([]UsageRow, error)
}
