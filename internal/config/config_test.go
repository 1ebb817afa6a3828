package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-that-is-long-enough-000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "clinicdesk-api", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(40), cfg.Clinic.DefaultMaxPatientsPerDay)
	assert.Equal(t, int64(30000), cfg.Clinic.DefaultConsultationFee)
	assert.False(t, cfg.Mail.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-that-is-long-enough-000")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CLINIC_DEFAULT_MAX_PATIENTS_PER_DAY", "2")
	t.Setenv("CLINIC_DEFAULT_CONSULTATION_FEE", "50000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(2), cfg.Clinic.DefaultMaxPatientsPerDay)
	assert.Equal(t, int64(50000), cfg.Clinic.DefaultConsultationFee)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsMissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsNonPositiveDailyCap(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-that-is-long-enough-000")
	t.Setenv("CLINIC_DEFAULT_MAX_PATIENTS_PER_DAY", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLINIC_DEFAULT_MAX_PATIENTS_PER_DAY")
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5433, Name: "clinic", User: "svc", Password: "pw", SSLMode: "require",
	}
	assert.Equal(t, "host=db user=svc password=pw dbname=clinic port=5433 sslmode=require Timezone=UTC", d.DSN())
}
