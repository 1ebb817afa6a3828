package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/pkg/auth"
	"github.com/clinicdesk/clinicdesk/pkg/mailer"
)

func newAuthService(accounts *mockAccountRepo) *AuthService {
	return newAuthServiceWithMail(accounts, config.MailConfig{})
}

func newAuthServiceWithMail(accounts *mockAccountRepo, mailCfg config.MailConfig) *AuthService {
	jwtManager := auth.NewJWTManager(config.JWTConfig{
		Secret:          "unit-test-secret-not-for-production",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "clinicdesk-test",
	})
	return NewAuthService(accounts, jwtManager, mailer.New(mailCfg), zap.NewNop())
}

func testAccount(t *testing.T, password string) *domain.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.Account{
		ID:           uuid.New(),
		Username:     "drtran",
		PasswordHash: string(hash),
		IsActive:     true,
	}
}

func TestLogin_Success(t *testing.T) {
	accounts := new(mockAccountRepo)
	svc := newAuthService(accounts)

	account := testAccount(t, "correct-horse-battery")
	accounts.On("GetByUsername", mock.Anything, "drtran").Return(account, nil)
	accounts.On("RecordLoginAttempt", mock.Anything, account.ID, 0, (*time.Time)(nil), true).Return(nil)

	pair, got, err := svc.Login(context.Background(), "drtran", "correct-horse-battery", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, account.ID, got.ID)
}

func TestLogin_WrongPasswordCountsFailure(t *testing.T) {
	accounts := new(mockAccountRepo)
	svc := newAuthService(accounts)

	account := testAccount(t, "correct-horse-battery")
	account.FailedLoginCount = 1
	accounts.On("GetByUsername", mock.Anything, "drtran").Return(account, nil)
	accounts.On("RecordLoginAttempt", mock.Anything, account.ID, 2, (*time.Time)(nil), false).Return(nil)

	_, _, err := svc.Login(context.Background(), "drtran", "wrong", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	accounts.AssertExpectations(t)
}

func TestLogin_FifthFailureLocks(t *testing.T) {
	accounts := new(mockAccountRepo)
	svc := newAuthService(accounts)

	account := testAccount(t, "correct-horse-battery")
	account.FailedLoginCount = 4
	accounts.On("GetByUsername", mock.Anything, "drtran").Return(account, nil)
	accounts.On("RecordLoginAttempt", mock.Anything, account.ID, 5,
		mock.MatchedBy(func(until *time.Time) bool { return until != nil && until.After(time.Now()) }),
		false).Return(nil)

	_, _, err := svc.Login(context.Background(), "drtran", "wrong", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	accounts.AssertExpectations(t)
}

func TestLogin_UnknownUsername(t *testing.T) {
	accounts := new(mockAccountRepo)
	svc := newAuthService(accounts)

	accounts.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrAccountNotFound)

	_, _, err := svc.Login(context.Background(), "ghost", "whatever", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveAndLocked(t *testing.T) {
	accounts := new(mockAccountRepo)
	svc := newAuthService(accounts)

	inactive := testAccount(t, "pw")
	inactive.IsActive = false
	accounts.On("GetByUsername", mock.Anything, "drtran").Return(inactive, nil).Once()

	_, _, err := svc.Login(context.Background(), "drtran", "pw", "10.0.0.1")
	assert.ErrorIs(t, err, ErrAccountInactive)

	locked := testAccount(t, "pw")
	until := time.Now().Add(10 * time.Minute)
	locked.LockedUntil = &until
	accounts.On("GetByUsername", mock.Anything, "drtran").Return(locked, nil).Once()

	_, _, err = svc.Login(context.Background(), "drtran", "pw", "10.0.0.1")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	accounts := new(mockAccountRepo)
	svc := newAuthService(accounts)

	account := testAccount(t, "correct-horse-battery")
	accounts.On("GetByUsername", mock.Anything, "drtran").Return(account, nil)
	accounts.On("RecordLoginAttempt", mock.Anything, account.ID, 0, (*time.Time)(nil), true).Return(nil)
	accounts.On("GetByID", mock.Anything, account.ID).Return(account, nil)

	pair, _, err := svc.Login(context.Background(), "drtran", "correct-horse-battery", "10.0.0.1")
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshToken_AccessTokenRejected(t *testing.T) {
	accounts := new(mockAccountRepo)
	svc := newAuthService(accounts)

	account := testAccount(t, "correct-horse-battery")
	accounts.On("GetByUsername", mock.Anything, "drtran").Return(account, nil)
	accounts.On("RecordLoginAttempt", mock.Anything, account.ID, 0, (*time.Time)(nil), true).Return(nil)

	pair, _, err := svc.Login(context.Background(), "drtran", "correct-horse-battery", "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	accounts := new(mockAccountRepo)
	svc := newAuthService(accounts)

	account := testAccount(t, "old-password-value")
	accounts.On("GetByID", mock.Anything, account.ID).Return(account, nil)

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), account.ID, "nope", "a-long-new-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("weak new password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), account.ID, "old-password-value", "short")
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("success", func(t *testing.T) {
		accounts.On("UpdatePassword", mock.Anything, account.ID, mock.AnythingOfType("string")).Return(nil)
		err := svc.ChangePassword(context.Background(), account.ID, "old-password-value", "a-long-new-password")
		assert.NoError(t, err)
	})
}

func TestResetPassword_UnknownEmailIsSilent(t *testing.T) {
	accounts := new(mockAccountRepo)
	svc := newAuthServiceWithMail(accounts, config.MailConfig{Enabled: true})

	accounts.On("GetByEmail", mock.Anything, "nobody@clinic.test").Return(nil, domain.ErrAccountNotFound)

	err := svc.ResetPassword(context.Background(), "nobody@clinic.test")
	assert.NoError(t, err)
	accounts.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

// A reset with no way to deliver the new password must not invalidate the
// stored hash.
func TestResetPassword_MailDisabledKeepsOldPassword(t *testing.T) {
	accounts := new(mockAccountRepo)
	svc := newAuthService(accounts)

	err := svc.ResetPassword(context.Background(), "drtran@clinic.test")
	assert.ErrorIs(t, err, ErrMailUnavailable)
	accounts.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}
