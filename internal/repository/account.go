package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicdesk/clinicdesk/internal/domain"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

var _ domain.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	if err := dbFrom(ctx, r.db).Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateUsername
		}
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.getOne(ctx, "username = ?", username)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *AccountRepository) getOne(ctx context.Context, cond string, arg any) (*domain.Account, error) {
	var a domain.Account
	err := dbFrom(ctx, r.db).
		Preload("Groups").
		Preload("Groups.Permissions").
		Preload("DirectPermissions").
		First(&a, cond, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("fetching account: %w", err)
	}
	return &a, nil
}

func (r *AccountRepository) Update(ctx context.Context, id uuid.UUID, cmd *domain.UpdateAccountCommand) (*domain.Account, error) {
	db := dbFrom(ctx, r.db)

	updates := map[string]any{}
	if cmd.FullName != nil {
		updates["full_name"] = *cmd.FullName
	}
	if cmd.Email != nil {
		updates["email"] = *cmd.Email
	}
	if cmd.IsActive != nil {
		updates["is_active"] = *cmd.IsActive
	}
	if cmd.IsAdmin != nil {
		updates["is_admin"] = *cmd.IsAdmin
	}

	if len(updates) > 0 {
		res := db.Model(&domain.Account{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil, domain.ErrDuplicateEmail
			}
			return nil, fmt.Errorf("updating account: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, domain.ErrAccountNotFound
		}
	}

	if cmd.GroupIDs != nil {
		groups := make([]domain.RoleGroup, 0, len(*cmd.GroupIDs))
		for _, gid := range *cmd.GroupIDs {
			groups = append(groups, domain.RoleGroup{ID: gid})
		}
		err := db.Model(&domain.Account{ID: id}).Association("Groups").Replace(groups)
		if err != nil {
			return nil, fmt.Errorf("replacing account groups: %w", err)
		}
	}

	if cmd.DirectPermissions != nil {
		if err := db.Where("account_id = ?", id).Delete(&domain.AccountPermission{}).Error; err != nil {
			return nil, fmt.Errorf("clearing direct permissions: %w", err)
		}
		for _, p := range *cmd.DirectPermissions {
			ap := domain.AccountPermission{AccountID: id, Permission: p}
			if err := db.Create(&ap).Error; err != nil {
				return nil, fmt.Errorf("granting permission: %w", err)
			}
		}
	}

	return r.GetByID(ctx, id)
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res := dbFrom(ctx, r.db).
		Model(&domain.Account{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("updating password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) RecordLoginAttempt(ctx context.Context, id uuid.UUID, failedCount int, lockedUntil *time.Time, success bool) error {
	updates := map[string]any{
		"failed_login_count": failedCount,
		"locked_until":       lockedUntil,
	}
	if success {
		updates["last_login_at"] = time.Now()
	}
	res := dbFrom(ctx, r.db).Model(&domain.Account{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("recording login attempt: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context, q *domain.ListAccountsQuery) (*domain.PagedAccounts, error) {
	db := dbFrom(ctx, r.db).Model(&domain.Account{})

	if q.Search != "" {
		term := "%" + q.Search + "%"
		db = db.Where("username ILIKE ? OR full_name ILIKE ?", term, term)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting accounts: %w", err)
	}

	page, pageSize := normalizePage(q.Page, q.PageSize)

	var accounts []*domain.Account
	err := db.Preload("Groups").
		Preload("Groups.Permissions").
		Preload("DirectPermissions").
		Order("username ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	return &domain.PagedAccounts{
		Accounts:   accounts,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (r *AccountRepository) ListGroups(ctx context.Context) ([]*domain.RoleGroup, error) {
	var groups []*domain.RoleGroup
	err := dbFrom(ctx, r.db).
		Preload("Permissions").
		Order("name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("listing role groups: %w", err)
	}
	return groups, nil
}

func (r *AccountRepository) GetGroup(ctx context.Context, id uuid.UUID) (*domain.RoleGroup, error) {
	var g domain.RoleGroup
	err := dbFrom(ctx, r.db).Preload("Permissions").First(&g, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("fetching role group: %w", err)
	}
	return &g, nil
}

func (r *AccountRepository) CreateGroup(ctx context.Context, g *domain.RoleGroup) error {
	if err := dbFrom(ctx, r.db).Create(g).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateGroup
		}
		return fmt.Errorf("creating role group: %w", err)
	}
	return nil
}

func (r *AccountRepository) UpdateGroup(ctx context.Context, id uuid.UUID, name string, permissions []domain.Permission) (*domain.RoleGroup, error) {
	db := dbFrom(ctx, r.db)

	res := db.Model(&domain.RoleGroup{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateGroup
		}
		return nil, fmt.Errorf("renaming role group: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrGroupNotFound
	}

	if err := db.Where("group_id = ?", id).Delete(&domain.GroupPermission{}).Error; err != nil {
		return nil, fmt.Errorf("clearing group permissions: %w", err)
	}
	for _, p := range permissions {
		gp := domain.GroupPermission{GroupID: id, Permission: p}
		if err := db.Create(&gp).Error; err != nil {
			return nil, fmt.Errorf("granting group permission: %w", err)
		}
	}

	return r.GetGroup(ctx, id)
}

func (r *AccountRepository) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	db := dbFrom(ctx, r.db)

	// Membership rows first; the join table has no cascade from the group side.
	if err := db.Exec(`DELETE FROM auth.account_groups WHERE role_group_id = ?`, id).Error; err != nil {
		return fmt.Errorf("clearing group memberships: %w", err)
	}

	res := db.Delete(&domain.RoleGroup{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting role group: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}
