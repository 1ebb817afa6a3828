package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Permission is a capability string in "resource:action" form, e.g.
// "patients:create". Route access is declared against these strings; an
// account's effective set is the union of its group permissions and any
// directly granted ones.
type Permission string

func NewPermission(resource, action string) Permission {
	return Permission(resource + ":" + action)
}

const (
	ResourcePatients    = "patients"
	ResourceVisits      = "visits"
	ResourceRecords     = "records"
	ResourceInvoices    = "invoices"
	ResourceCatalog     = "catalog"
	ResourceMedications = "medications"
	ResourceSettings    = "settings"
	ResourceAccounts    = "accounts"
	ResourceRoles       = "roles"
	ResourceReports     = "reports"

	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// AllPermissions enumerates every capability the system knows about, in the
// shape the role-management UI consumes.
func AllPermissions() []Permission {
	resources := map[string][]string{
		ResourcePatients:    {ActionRead, ActionCreate, ActionUpdate},
		ResourceVisits:      {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		ResourceRecords:     {ActionRead, ActionCreate, ActionUpdate},
		ResourceInvoices:    {ActionRead},
		ResourceCatalog:     {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		ResourceMedications: {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		ResourceSettings:    {ActionRead, ActionUpdate},
		ResourceAccounts:    {ActionRead, ActionCreate, ActionUpdate},
		ResourceRoles:       {ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		ResourceReports:     {ActionRead},
	}

	var out []Permission
	for res, actions := range resources {
		for _, act := range actions {
			out = append(out, NewPermission(res, act))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RoleGroup is a named set of permissions. Accounts belong to any number of
// groups; membership grants the whole set.
type RoleGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Name        string            `gorm:"column:name;type:varchar(100);uniqueIndex;not null" json:"name"`
	Permissions []GroupPermission `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"permissions"`
}

func (RoleGroup) TableName() string {
	return "auth.role_groups"
}

func (g *RoleGroup) PermissionStrings() []string {
	out := make([]string, 0, len(g.Permissions))
	for _, p := range g.Permissions {
		out = append(out, string(p.Permission))
	}
	sort.Strings(out)
	return out
}

type GroupPermission struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	GroupID    uuid.UUID  `gorm:"column:group_id;type:uuid;not null;index;uniqueIndex:ux_group_permission" json:"-"`
	Permission Permission `gorm:"column:permission;type:varchar(100);not null;uniqueIndex:ux_group_permission" json:"permission"`
}

func (GroupPermission) TableName() string {
	return "auth.group_permissions"
}

// Account is a staff login. Patients do not have accounts; appointment
// self-registration is a public endpoint.
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Username     string  `gorm:"column:username;type:varchar(150);uniqueIndex;not null" json:"username"`
	FullName     string  `gorm:"column:full_name;type:varchar(150)" json:"full_name"`
	Email        *string `gorm:"column:email;type:varchar(255);uniqueIndex" json:"email"`
	PasswordHash string  `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`

	IsActive bool `gorm:"column:is_active;default:true;index" json:"is_active"`
	IsAdmin  bool `gorm:"column:is_admin;default:false" json:"is_admin"`

	Groups            []RoleGroup         `gorm:"many2many:auth.account_groups" json:"groups"`
	DirectPermissions []AccountPermission `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"direct_permissions"`

	FailedLoginCount int        `gorm:"column:failed_login_count;default:0" json:"-"`
	LockedUntil      *time.Time `gorm:"column:locked_until" json:"-"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at" json:"last_login_at"`
}

func (Account) TableName() string {
	return "auth.accounts"
}

// IsLocked reports whether the account is temporarily locked due to failed logins.
func (a *Account) IsLocked() bool {
	return a.LockedUntil != nil && time.Now().Before(*a.LockedUntil)
}

// EffectivePermissions is the union of group permissions and direct grants,
// sorted for stable API output.
func (a *Account) EffectivePermissions() []string {
	set := make(map[string]struct{})
	for _, g := range a.Groups {
		for _, p := range g.Permissions {
			set[string(p.Permission)] = struct{}{}
		}
	}
	for _, p := range a.DirectPermissions {
		set[string(p.Permission)] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// HasPermission checks a single capability. Admin accounts hold every
// permission implicitly.
func (a *Account) HasPermission(p Permission) bool {
	if a.IsAdmin {
		return true
	}
	for _, g := range a.Groups {
		for _, gp := range g.Permissions {
			if gp.Permission == p {
				return true
			}
		}
	}
	for _, dp := range a.DirectPermissions {
		if dp.Permission == p {
			return true
		}
	}
	return false
}

type AccountPermission struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	AccountID  uuid.UUID  `gorm:"column:account_id;type:uuid;not null;index;uniqueIndex:ux_account_permission" json:"-"`
	Permission Permission `gorm:"column:permission;type:varchar(100);not null;uniqueIndex:ux_account_permission" json:"permission"`
}

func (AccountPermission) TableName() string {
	return "auth.account_permissions"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	AccountID uuid.UUID `json:"sub"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
}

type AuditAction string

const (
	ActionAuditCreate AuditAction = "create"
	ActionAuditRead   AuditAction = "read"
	ActionAuditUpdate AuditAction = "update"
	ActionAuditDelete AuditAction = "delete"
	ActionAuditLogin  AuditAction = "login"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	// Who
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;index"`
	Username  string    `gorm:"column:username;type:varchar(150)"`
	IPAddress string    `gorm:"column:ip_address;type:varchar(45)"` // Supports IPv6

	// What
	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	RequestID string `gorm:"column:request_id;type:varchar(50);index"`
	Changes   string `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}
