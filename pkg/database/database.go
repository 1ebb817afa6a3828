package database

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/internal/domain/catalog"
	"github.com/clinicdesk/clinicdesk/internal/domain/invoice"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/record"
	"github.com/clinicdesk/clinicdesk/internal/domain/setting"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:                              true,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"clinical", "catalog", "billing", "auth", "audit"} // logical namespaces
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.Account{},
		&domain.RoleGroup{},
		&domain.GroupPermission{},
		&domain.AccountPermission{},
		&domain.AuditLog{},
		&catalog.DiseaseType{},
		&catalog.Unit{},
		&catalog.DosageInstruction{},
		&catalog.Medication{},
		&setting.Setting{},
		&patient.Patient{},
		&visit.QueueEntry{},
		&record.MedicalRecord{},
		&record.PrescriptionLine{},
		&invoice.Invoice{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		// Patient search: GIN trigram index for name-substring lookups
		{
			name:  "idx_patients_name_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_patients_name_trgm ON clinical.patients USING gin (full_name gin_trgm_ops)`,
		},
		{
			name:  "idx_medications_name_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_medications_name_trgm ON catalog.medications USING gin (name gin_trgm_ops)`,
		},
		{
			name:  "idx_invoices_paid_at_day",
			query: `CREATE INDEX IF NOT EXISTS idx_invoices_paid_at_day ON billing.invoices (paid_at)`,
		},
		{
			name:  "idx_prescription_lines_medication",
			query: `CREATE INDEX IF NOT EXISTS idx_prescription_lines_medication ON clinical.prescription_lines (medication_id)`,
		},
	}

	_ = db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return nil
}

// Seed creates the default role groups when they do not exist yet. Group
// names match what the clinic actually staffs: managers see everything,
// medical staff handle the queue, records and catalog reads.
func Seed(db *gorm.DB, log *zap.Logger) error {
	groups := []struct {
		name        string
		permissions []domain.Permission
	}{
		{
			name:        "manager",
			permissions: domain.AllPermissions(),
		},
		{
			name: "medical_staff",
			permissions: []domain.Permission{
				domain.NewPermission(domain.ResourcePatients, domain.ActionRead),
				domain.NewPermission(domain.ResourcePatients, domain.ActionCreate),
				domain.NewPermission(domain.ResourcePatients, domain.ActionUpdate),
				domain.NewPermission(domain.ResourceVisits, domain.ActionRead),
				domain.NewPermission(domain.ResourceVisits, domain.ActionCreate),
				domain.NewPermission(domain.ResourceVisits, domain.ActionUpdate),
				domain.NewPermission(domain.ResourceVisits, domain.ActionDelete),
				domain.NewPermission(domain.ResourceRecords, domain.ActionRead),
				domain.NewPermission(domain.ResourceRecords, domain.ActionCreate),
				domain.NewPermission(domain.ResourceRecords, domain.ActionUpdate),
				domain.NewPermission(domain.ResourceInvoices, domain.ActionRead),
				domain.NewPermission(domain.ResourceCatalog, domain.ActionRead),
				domain.NewPermission(domain.ResourceMedications, domain.ActionRead),
			},
		},
	}

	for _, g := range groups {
		var existing domain.RoleGroup
		err := db.Where("name = ?", g.name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("checking role group %s: %w", g.name, err)
		}

		group := domain.RoleGroup{Name: g.name}
		for _, p := range g.permissions {
			group.Permissions = append(group.Permissions, domain.GroupPermission{Permission: p})
		}
		if err := db.Create(&group).Error; err != nil {
			return fmt.Errorf("seeding role group %s: %w", g.name, err)
		}
		log.Info("seeded role group", zap.String("name", g.name), zap.Int("permissions", len(g.permissions)))
	}

	return nil
}

// EnsureAdmin bootstraps an administrator account on first start. No-op when
// the username already exists.
func EnsureAdmin(db *gorm.DB, log *zap.Logger, username, password string) error {
	var existing domain.Account
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := domain.Account{
		Username:     username,
		FullName:     "Administrator",
		PasswordHash: string(hash),
		IsActive:     true,
		IsAdmin:      true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}

	log.Info("bootstrapped admin account", zap.String("username", username))
	return nil
}
