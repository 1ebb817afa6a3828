package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinicdesk/clinicdesk/internal/domain/report"
	"github.com/clinicdesk/clinicdesk/internal/service"
)

type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Summary(c *gin.Context) {
	out, err := h.reports.DailySummary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *ReportHandler) MonthlyRevenue(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "year query parameter is required")
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "month query parameter is required")
		return
	}

	out, err := h.reports.MonthlyRevenue(c.Request.Context(), year, time.Month(month))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *ReportHandler) MedicationUsage(c *gin.Context) {
	q := report.UsageQuery{Search: c.Query("search")}

	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "year must be an integer")
			return
		}
		q.Year = year
	}
	if v := c.Query("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "month must be an integer")
			return
		}
		q.Month = time.Month(month)
	}

	out, err := h.reports.MedicationUsage(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}
