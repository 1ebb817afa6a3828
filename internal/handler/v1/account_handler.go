package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/internal/service"
)

type AccountHandler struct {
	accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type createAccountRequest struct {
	Username          string      `json:"username" binding:"required"`
	FullName          string      `json:"full_name"`
	Email             *string     `json:"email"`
	Password          string      `json:"password" binding:"required"`
	IsAdmin           bool        `json:"is_admin"`
	GroupIDs          []uuid.UUID `json:"group_ids"`
	DirectPermissions []string    `json:"direct_permissions"`
}

func (h *AccountHandler) Create(c *gin.Context) {
	var req createAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accounts.CreateAccount(c.Request.Context(), &domain.CreateAccountCommand{
		Username:          req.Username,
		FullName:          req.FullName,
		Email:             req.Email,
		Password:          req.Password,
		IsAdmin:           req.IsAdmin,
		GroupIDs:          req.GroupIDs,
		DirectPermissions: toPermissions(req.DirectPermissions),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, account)
}

func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	account, err := h.accounts.GetAccount(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, account)
}

func (h *AccountHandler) List(c *gin.Context) {
	out, err := h.accounts.ListAccounts(c.Request.Context(), &domain.ListAccountsQuery{
		Search:   c.Query("search"),
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

type updateAccountRequest struct {
	FullName          *string      `json:"full_name"`
	Email             *string      `json:"email"`
	IsActive          *bool        `json:"is_active"`
	IsAdmin           *bool        `json:"is_admin"`
	GroupIDs          *[]uuid.UUID `json:"group_ids"`
	DirectPermissions *[]string    `json:"direct_permissions"`
}

func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &domain.UpdateAccountCommand{
		FullName: req.FullName,
		Email:    req.Email,
		IsActive: req.IsActive,
		IsAdmin:  req.IsAdmin,
		GroupIDs: req.GroupIDs,
	}
	if req.DirectPermissions != nil {
		perms := toPermissions(*req.DirectPermissions)
		cmd.DirectPermissions = &perms
	}

	account, err := h.accounts.UpdateAccount(c.Request.Context(), id, cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, account)
}

func (h *AccountHandler) ListGroups(c *gin.Context) {
	groups, err := h.accounts.ListGroups(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, groups)
}

type groupRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions"`
}

func (h *AccountHandler) CreateGroup(c *gin.Context) {
	var req groupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.accounts.CreateGroup(c.Request.Context(), req.Name, toPermissions(req.Permissions))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, group)
}

func (h *AccountHandler) UpdateGroup(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req groupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.accounts.UpdateGroup(c.Request.Context(), id, req.Name, toPermissions(req.Permissions))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, group)
}

func (h *AccountHandler) DeleteGroup(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.accounts.DeleteGroup(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// ListPermissions enumerates every capability for the role-editing UI.
func (h *AccountHandler) ListPermissions(c *gin.Context) {
	respondOK(c, h.accounts.Permissions())
}

func toPermissions(raw []string) []domain.Permission {
	out := make([]domain.Permission, 0, len(raw))
	for _, p := range raw {
		out = append(out, domain.Permission(p))
	}
	return out
}
