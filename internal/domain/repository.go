package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CreateAccountCommand struct {
	Username          string
	FullName          string
	Email             *string
	Password          string
	IsAdmin           bool
	GroupIDs          []uuid.UUID
	DirectPermissions []Permission
}

type UpdateAccountCommand struct {
	FullName          *string
	Email             *string
	IsActive          *bool
	IsAdmin           *bool
	GroupIDs          *[]uuid.UUID
	DirectPermissions *[]Permission
}

type ListAccountsQuery struct {
	Search   string
	Page     int
	PageSize int
}

type PagedAccounts struct {
	Accounts   []*Account `json:"accounts"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

type AccountRepository interface {
	Create(ctx context.Context, a *Account) error

	// GetByID loads the account with groups (and their permissions) and
	// direct grants preloaded.
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)

	Update(ctx context.Context, id uuid.UUID, cmd *UpdateAccountCommand) (*Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// RecordLoginAttempt persists the failure counter and optional lockout
	// window after a login attempt; a successful attempt resets both and
	// stamps last_login_at.
	RecordLoginAttempt(ctx context.Context, id uuid.UUID, failedCount int, lockedUntil *time.Time, success bool) error

	List(ctx context.Context, q *ListAccountsQuery) (*PagedAccounts, error)

	ListGroups(ctx context.Context) ([]*RoleGroup, error)
	GetGroup(ctx context.Context, id uuid.UUID) (*RoleGroup, error)
	CreateGroup(ctx context.Context, g *RoleGroup) error

	// UpdateGroup replaces the group's name and permission set.
	UpdateGroup(ctx context.Context, id uuid.UUID, name string, permissions []Permission) (*RoleGroup, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error
}

type AuditRepository interface {
	Insert(ctx context.Context, entries []*AuditLog) error
	List(ctx context.Context, accountID *uuid.UUID, limit int) ([]*AuditLog, error)
}
