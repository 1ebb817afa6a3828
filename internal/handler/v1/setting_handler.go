package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicdesk/clinicdesk/internal/domain/setting"
	"github.com/clinicdesk/clinicdesk/internal/handler/middleware"
	"github.com/clinicdesk/clinicdesk/internal/service"
)

type SettingHandler struct {
	settings *service.SettingService
	audit    *service.AuditService
}

func NewSettingHandler(settings *service.SettingService, audit *service.AuditService) *SettingHandler {
	return &SettingHandler{settings: settings, audit: audit}
}

func (h *SettingHandler) List(c *gin.Context) {
	out, err := h.settings.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

type setSettingRequest struct {
	Value int64 `json:"value" binding:"required"`
}

func (h *SettingHandler) Set(c *gin.Context) {
	key := setting.Key(c.Param("key"))

	var req setSettingRequest
	if !bindJSON(c, &req) {
		return
	}

	row, err := h.settings.Set(c.Request.Context(), key, req.Value)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if account := middleware.CurrentAccount(c); account != nil {
		h.audit.LogAsync(c.Request.Context(), service.AuditEntry{
			AccountID:    account.ID,
			Username:     account.Username,
			Action:       "update",
			ResourceType: "setting",
			ResourceID:   string(key),
			IPAddress:    c.ClientIP(),
			RequestID:    middleware.GetRequestID(c),
		})
	}
	respondOK(c, row)
}
