package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/pkg/auth"
	"github.com/clinicdesk/clinicdesk/pkg/mailer"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to multiple failed login attempts")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrMailUnavailable    = errors.New("mail delivery is not configured")
)

const maxFailedAttempts = 5

const lockDuration = 15 * time.Minute

type AuthService struct {
	accounts   domain.AccountRepository
	jwtManager *auth.JWTManager
	mail       *mailer.Mailer
	log        *zap.Logger
}

func NewAuthService(accounts domain.AccountRepository, jwtManager *auth.JWTManager, mail *mailer.Mailer, log *zap.Logger) *AuthService {
	return &AuthService{accounts: accounts, jwtManager: jwtManager, mail: mail, log: log}
}

func (s *AuthService) Login(ctx context.Context, username, password, ip string) (*domain.TokenPair, *domain.Account, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		// Use bcrypt dummy hash to prevent timing-based user enumeration.
		// An attacker measuring response time should not be able to determine
		// whether the username exists in the system.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, nil, ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, nil, ErrAccountInactive
	}

	if account.IsLocked() {
		return nil, nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		failed := account.FailedLoginCount + 1
		var lockedUntil *time.Time
		if failed >= maxFailedAttempts {
			until := time.Now().Add(lockDuration)
			lockedUntil = &until
		}
		_ = s.accounts.RecordLoginAttempt(ctx, account.ID, failed, lockedUntil, false)
		s.log.Warn("failed login attempt",
			zap.String("username", username),
			zap.String("ip", ip),
			zap.Int("failed_count", failed),
		)
		return nil, nil, ErrInvalidCredentials
	}

	_ = s.accounts.RecordLoginAttempt(ctx, account.ID, 0, nil, true)

	pair, err := s.jwtManager.GenerateTokenPair(&domain.Claims{
		AccountID: account.ID,
		Username:  account.Username,
		IsAdmin:   account.IsAdmin,
	})
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, nil, fmt.Errorf("generating tokens: %w", err)
	}

	s.log.Info("account logged in",
		zap.String("account_id", account.ID.String()),
		zap.String("ip", ip),
	)

	return pair, account, nil
}

// RefreshToken issues a new token pair given a valid refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Re-validate the account is still active and unlocked.
	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil || !account.IsActive || account.IsLocked() {
		return nil, ErrInvalidCredentials
	}

	return s.jwtManager.GenerateTokenPair(&domain.Claims{
		AccountID: account.ID,
		Username:  account.Username,
		IsAdmin:   account.IsAdmin,
	})
}

// Me returns the current account with groups and permissions loaded.
func (s *AuthService) Me(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	return s.accounts.GetByID(ctx, accountID)
}

// ChangePassword updates a password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.accounts.UpdatePassword(ctx, accountID, string(hash))
}

// ResetPassword generates a random password for the account behind the given
// email and delivers it by mail. The response is identical whether or not
// the email exists, so the endpoint cannot be used for enumeration. The old
// hash is only replaced once the new password can actually be delivered.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	if !s.mail.Enabled() {
		return ErrMailUnavailable
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil
		}
		return err
	}

	newPassword, err := generatePassword()
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.mail.SendPasswordReset(ctx, email, account.Username, newPassword); err != nil {
		return fmt.Errorf("sending reset mail: %w", err)
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, string(hash)); err != nil {
		return err
	}

	s.log.Info("password reset delivered", zap.String("account_id", account.ID.String()))
	return nil
}

func validatePasswordStrength(password string) error {
	if len(password) < 12 {
		return &ValidationError{Fields: []string{"password must be at least 12 characters"}}
	}
	return nil
}

func generatePassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
