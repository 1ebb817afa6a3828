package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicdesk/clinicdesk/internal/domain"
)

// AccountService manages staff accounts and role groups.
type AccountService struct {
	accounts domain.AccountRepository
	log      *zap.Logger
}

func NewAccountService(accounts domain.AccountRepository, log *zap.Logger) *AccountService {
	return &AccountService{accounts: accounts, log: log}
}

func (s *AccountService) CreateAccount(ctx context.Context, cmd *domain.CreateAccountCommand) (*domain.Account, error) {
	var fields []string
	if cmd.Username == "" {
		fields = append(fields, "username is required")
	}
	if err := validatePasswordStrength(cmd.Password); err != nil {
		fields = append(fields, "password must be at least 12 characters")
	}
	if err := validatePermissions(cmd.DirectPermissions); err != nil {
		fields = append(fields, err.Error())
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	account := &domain.Account{
		Username:     cmd.Username,
		FullName:     cmd.FullName,
		Email:        cmd.Email,
		PasswordHash: string(hash),
		IsActive:     true,
		IsAdmin:      cmd.IsAdmin,
	}
	for _, gid := range cmd.GroupIDs {
		account.Groups = append(account.Groups, domain.RoleGroup{ID: gid})
	}
	for _, p := range cmd.DirectPermissions {
		account.DirectPermissions = append(account.DirectPermissions, domain.AccountPermission{Permission: p})
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.log.Info("account created",
		zap.String("account_id", account.ID.String()),
		zap.String("username", account.Username),
	)

	return s.accounts.GetByID(ctx, account.ID)
}

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *AccountService) UpdateAccount(ctx context.Context, id uuid.UUID, cmd *domain.UpdateAccountCommand) (*domain.Account, error) {
	if cmd.DirectPermissions != nil {
		if err := validatePermissions(*cmd.DirectPermissions); err != nil {
			return nil, &ValidationError{Fields: []string{err.Error()}}
		}
	}
	return s.accounts.Update(ctx, id, cmd)
}

func (s *AccountService) ListAccounts(ctx context.Context, q *domain.ListAccountsQuery) (*domain.PagedAccounts, error) {
	return s.accounts.List(ctx, q)
}

func (s *AccountService) ListGroups(ctx context.Context) ([]*domain.RoleGroup, error) {
	return s.accounts.ListGroups(ctx)
}

func (s *AccountService) GetGroup(ctx context.Context, id uuid.UUID) (*domain.RoleGroup, error) {
	return s.accounts.GetGroup(ctx, id)
}

func (s *AccountService) CreateGroup(ctx context.Context, name string, permissions []domain.Permission) (*domain.RoleGroup, error) {
	if name == "" {
		return nil, &ValidationError{Fields: []string{"name is required"}}
	}
	if err := validatePermissions(permissions); err != nil {
		return nil, &ValidationError{Fields: []string{err.Error()}}
	}

	group := &domain.RoleGroup{Name: name}
	for _, p := range permissions {
		group.Permissions = append(group.Permissions, domain.GroupPermission{Permission: p})
	}

	if err := s.accounts.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	return s.accounts.GetGroup(ctx, group.ID)
}

func (s *AccountService) UpdateGroup(ctx context.Context, id uuid.UUID, name string, permissions []domain.Permission) (*domain.RoleGroup, error) {
	if name == "" {
		return nil, &ValidationError{Fields: []string{"name is required"}}
	}
	if err := validatePermissions(permissions); err != nil {
		return nil, &ValidationError{Fields: []string{err.Error()}}
	}
	return s.accounts.UpdateGroup(ctx, id, name, permissions)
}

func (s *AccountService) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	return s.accounts.DeleteGroup(ctx, id)
}

// Permissions enumerates every capability, for the role-editing UI.
func (s *AccountService) Permissions() []domain.Permission {
	return domain.AllPermissions()
}

func validatePermissions(permissions []domain.Permission) error {
	known := make(map[domain.Permission]struct{})
	for _, p := range domain.AllPermissions() {
		known[p] = struct{}{}
	}
	for _, p := range permissions {
		if _, ok := known[p]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownPermission, p)
		}
	}
	return nil
}
