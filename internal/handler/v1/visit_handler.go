package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
	"github.com/clinicdesk/clinicdesk/internal/handler/middleware"
	"github.com/clinicdesk/clinicdesk/internal/service"
)

type VisitHandler struct {
	registration *service.RegistrationService
	audit        *service.AuditService
}

func NewVisitHandler(registration *service.RegistrationService, audit *service.AuditService) *VisitHandler {
	return &VisitHandler{registration: registration, audit: audit}
}

type registerRequest struct {
	FullName  string `json:"full_name" binding:"required"`
	BirthYear int    `json:"birth_year" binding:"required"`
	Sex       string `json:"sex" binding:"required"`
	Address   string `json:"address"`
	VisitDate string `json:"visit_date" binding:"required"`
}

// Register is the public appointment endpoint; no authentication.
func (h *VisitHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	visitDate, err := parseDate(req.VisitDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "visit_date must be YYYY-MM-DD")
		return
	}

	entry, err := h.registration.Register(c.Request.Context(), &visit.RegisterCommand{
		FullName:  req.FullName,
		BirthYear: req.BirthYear,
		Sex:       patient.Sex(req.Sex),
		Address:   req.Address,
		VisitDate: visitDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, entry)
}

// ListQueue returns the visit queue, defaulting to today.
func (h *VisitHandler) ListQueue(c *gin.Context) {
	q := &visit.ListQueueQuery{}
	if raw := c.Query("date"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		q.VisitDate = &d
	} else {
		today := visit.Day(time.Now())
		q.VisitDate = &today
	}

	entries, err := h.registration.ListQueue(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, entries)
}

func (h *VisitHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	entry, err := h.registration.GetEntry(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, entry)
}

type moveEntryRequest struct {
	VisitDate string `json:"visit_date" binding:"required"`
}

func (h *VisitHandler) Move(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req moveEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := parseDate(req.VisitDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "visit_date must be YYYY-MM-DD")
		return
	}

	entry, err := h.registration.MoveEntry(c.Request.Context(), id, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.auditChange(c, "update", id.String())
	respondOK(c, entry)
}

func (h *VisitHandler) Cancel(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.registration.CancelEntry(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	h.auditChange(c, "delete", id.String())
	respondOK(c, gin.H{"deleted": true})
}

func (h *VisitHandler) auditChange(c *gin.Context, action, resourceID string) {
	account := middleware.CurrentAccount(c)
	if account == nil {
		return
	}
	h.audit.LogAsync(c.Request.Context(), service.AuditEntry{
		AccountID:    account.ID,
		Username:     account.Username,
		Action:       action,
		ResourceType: "queue_entry",
		ResourceID:   resourceID,
		IPAddress:    c.ClientIP(),
		RequestID:    middleware.GetRequestID(c),
	})
}
