package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicdesk/clinicdesk/internal/handler/middleware"
	"github.com/clinicdesk/clinicdesk/internal/service"
)

type AuthHandler struct {
	auth  *service.AuthService
	audit *service.AuditService
}

func NewAuthHandler(auth *service.AuthService, audit *service.AuditService) *AuthHandler {
	return &AuthHandler{auth: auth, audit: audit}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, account, err := h.auth.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.audit.LogAsync(c.Request.Context(), service.AuditEntry{
		AccountID:    account.ID,
		Username:     account.Username,
		Action:       "login",
		ResourceType: "session",
		IPAddress:    c.ClientIP(),
		RequestID:    middleware.GetRequestID(c),
	})

	respondOK(c, gin.H{
		"tokens":      pair,
		"account_id":  account.ID,
		"username":    account.Username,
		"is_admin":    account.IsAdmin,
		"permissions": account.EffectivePermissions(),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, pair)
}

func (h *AuthHandler) Me(c *gin.Context) {
	account := middleware.CurrentAccount(c)

	full, err := h.auth.Me(c.Request.Context(), account.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"account":     full,
		"permissions": full.EffectivePermissions(),
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	account := middleware.CurrentAccount(c)
	if err := h.auth.ChangePassword(c.Request.Context(), account.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"changed": true})
}

type resetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Email); err != nil {
		respondServiceError(c, err)
		return
	}

	// Always the same body, whether or not the email exists.
	respondOK(c, gin.H{"message": "if the email is registered, a new password has been sent"})
}
