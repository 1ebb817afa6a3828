package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/catalog"
	"github.com/clinicdesk/clinicdesk/internal/service"
)

type CatalogHandler struct {
	catalogs *service.CatalogService
}

func NewCatalogHandler(catalogs *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogs: catalogs}
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CatalogHandler) ListDiseaseTypes(c *gin.Context) {
	out, err := h.catalogs.ListDiseaseTypes(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *CatalogHandler) CreateDiseaseType(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.catalogs.CreateDiseaseType(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, d)
}

func (h *CatalogHandler) UpdateDiseaseType(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.catalogs.UpdateDiseaseType(c.Request.Context(), id, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

func (h *CatalogHandler) DeleteDiseaseType(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogs.DeleteDiseaseType(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

func (h *CatalogHandler) ListUnits(c *gin.Context) {
	out, err := h.catalogs.ListUnits(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *CatalogHandler) CreateUnit(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.catalogs.CreateUnit(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, u)
}

func (h *CatalogHandler) UpdateUnit(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.catalogs.UpdateUnit(c.Request.Context(), id, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, u)
}

func (h *CatalogHandler) DeleteUnit(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogs.DeleteUnit(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

func (h *CatalogHandler) ListInstructions(c *gin.Context) {
	out, err := h.catalogs.ListInstructions(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *CatalogHandler) CreateInstruction(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	i, err := h.catalogs.CreateInstruction(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, i)
}

func (h *CatalogHandler) UpdateInstruction(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	i, err := h.catalogs.UpdateInstruction(c.Request.Context(), id, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, i)
}

func (h *CatalogHandler) DeleteInstruction(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogs.DeleteInstruction(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

func (h *CatalogHandler) ListMedications(c *gin.Context) {
	out, err := h.catalogs.ListMedications(c.Request.Context(), &catalog.ListMedicationsQuery{
		Search: c.Query("search"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *CatalogHandler) GetMedication(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	m, err := h.catalogs.GetMedication(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, m)
}

type createMedicationRequest struct {
	Name                  string     `json:"name" binding:"required"`
	UnitID                uuid.UUID  `json:"unit_id" binding:"required"`
	UnitPrice             int64      `json:"unit_price"`
	StockCount            int        `json:"stock_count"`
	DefaultInstructionsID *uuid.UUID `json:"default_instructions_id"`
	ExpiryDate            *string    `json:"expiry_date"`
}

func (h *CatalogHandler) CreateMedication(c *gin.Context) {
	var req createMedicationRequest
	if !bindJSON(c, &req) {
		return
	}

	expiry, ok := parseOptionalDate(c, req.ExpiryDate)
	if !ok {
		return
	}

	m, err := h.catalogs.CreateMedication(c.Request.Context(), &catalog.CreateMedicationCommand{
		Name:                  req.Name,
		UnitID:                req.UnitID,
		UnitPrice:             req.UnitPrice,
		StockCount:            req.StockCount,
		DefaultInstructionsID: req.DefaultInstructionsID,
		ExpiryDate:            expiry,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, m)
}

type updateMedicationRequest struct {
	Name                  *string    `json:"name"`
	UnitID                *uuid.UUID `json:"unit_id"`
	UnitPrice             *int64     `json:"unit_price"`
	StockCount            *int       `json:"stock_count"`
	DefaultInstructionsID *uuid.UUID `json:"default_instructions_id"`
	ExpiryDate            *string    `json:"expiry_date"`
}

func (h *CatalogHandler) UpdateMedication(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateMedicationRequest
	if !bindJSON(c, &req) {
		return
	}

	expiry, ok := parseOptionalDate(c, req.ExpiryDate)
	if !ok {
		return
	}

	m, err := h.catalogs.UpdateMedication(c.Request.Context(), id, &catalog.UpdateMedicationCommand{
		Name:                  req.Name,
		UnitID:                req.UnitID,
		UnitPrice:             req.UnitPrice,
		StockCount:            req.StockCount,
		DefaultInstructionsID: req.DefaultInstructionsID,
		ExpiryDate:            expiry,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, m)
}

func (h *CatalogHandler) DeleteMedication(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogs.DeleteMedication(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

func parseOptionalDate(c *gin.Context, raw *string) (*time.Time, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	d, err := parseDate(*raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "date fields must be YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}
