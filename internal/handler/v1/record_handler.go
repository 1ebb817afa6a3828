package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/record"
	"github.com/clinicdesk/clinicdesk/internal/handler/middleware"
	"github.com/clinicdesk/clinicdesk/internal/service"
)

type RecordHandler struct {
	records *service.RecordService
	audit   *service.AuditService
}

func NewRecordHandler(records *service.RecordService, audit *service.AuditService) *RecordHandler {
	return &RecordHandler{records: records, audit: audit}
}

type lineRequest struct {
	MedicationID   uuid.UUID  `json:"medication_id" binding:"required"`
	Quantity       int        `json:"quantity" binding:"required"`
	InstructionsID *uuid.UUID `json:"instructions_id"`
}

type saveRecordRequest struct {
	PatientID     uuid.UUID     `json:"patient_id" binding:"required"`
	VisitDate     string        `json:"visit_date" binding:"required"`
	Symptoms      string        `json:"symptoms"`
	DiseaseTypeID *uuid.UUID    `json:"disease_type_id"`
	QueueEntryID  *uuid.UUID    `json:"queue_entry_id"`
	Lines         []lineRequest `json:"lines"`
}

func (r *saveRecordRequest) toCommand(c *gin.Context) (*record.SaveRecordCommand, bool) {
	visitDate, err := parseDate(r.VisitDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "visit_date must be YYYY-MM-DD")
		return nil, false
	}

	cmd := &record.SaveRecordCommand{
		PatientID:     r.PatientID,
		VisitDate:     visitDate,
		Symptoms:      r.Symptoms,
		DiseaseTypeID: r.DiseaseTypeID,
		QueueEntryID:  r.QueueEntryID,
	}
	if account := middleware.CurrentAccount(c); account != nil {
		cmd.AuthorID = &account.ID
	}
	for _, l := range r.Lines {
		cmd.Lines = append(cmd.Lines, record.LineInput{
			MedicationID:   l.MedicationID,
			Quantity:       l.Quantity,
			InstructionsID: l.InstructionsID,
		})
	}
	return cmd, true
}

func (h *RecordHandler) Create(c *gin.Context) {
	var req saveRecordRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, ok := req.toCommand(c)
	if !ok {
		return
	}

	rec, err := h.records.CreateRecord(c.Request.Context(), cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.auditChange(c, "create", rec.ID.String())
	respondCreated(c, rec)
}

func (h *RecordHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req saveRecordRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, ok := req.toCommand(c)
	if !ok {
		return
	}

	rec, err := h.records.UpdateRecord(c.Request.Context(), id, cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.auditChange(c, "update", id.String())
	respondOK(c, rec)
}

func (h *RecordHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	rec, err := h.records.GetRecord(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, rec)
}

func (h *RecordHandler) List(c *gin.Context) {
	q := &record.ListRecordsQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}

	if raw := c.Query("patient_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "patient_id must be a valid UUID")
			return
		}
		q.PatientID = &pid
	}
	if raw := c.Query("from"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		q.DateFrom = &d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		q.DateTo = &d
	}

	out, err := h.records.ListRecords(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

// Invoice returns the invoice derived for a record.
func (h *RecordHandler) Invoice(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	inv, err := h.records.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"invoice": inv,
		"total":   inv.Total(),
	})
}

func (h *RecordHandler) auditChange(c *gin.Context, action, resourceID string) {
	account := middleware.CurrentAccount(c)
	if account == nil {
		return
	}
	h.audit.LogAsync(c.Request.Context(), service.AuditEntry{
		AccountID:    account.ID,
		Username:     account.Username,
		Action:       action,
		ResourceType: "medical_record",
		ResourceID:   resourceID,
		IPAddress:    c.ClientIP(),
		RequestID:    middleware.GetRequestID(c),
	})
}
