package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/clinicdesk/clinicdesk/internal/config"
	v1 "github.com/clinicdesk/clinicdesk/internal/handler/v1"
	"github.com/clinicdesk/clinicdesk/internal/repository"
	"github.com/clinicdesk/clinicdesk/internal/service"
	"github.com/clinicdesk/clinicdesk/pkg/auth"
	"github.com/clinicdesk/clinicdesk/pkg/database"
	"github.com/clinicdesk/clinicdesk/pkg/logger"
	"github.com/clinicdesk/clinicdesk/pkg/mailer"
	"github.com/clinicdesk/clinicdesk/pkg/metrics"
	"github.com/clinicdesk/clinicdesk/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		log.Fatal("tracer init failed", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}

	if err := database.Migrate(db, log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	if err := database.Seed(db, log); err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}

	if username := os.Getenv("ADMIN_USERNAME"); username != "" {
		if err := database.EnsureAdmin(db, log, username, os.Getenv("ADMIN_PASSWORD")); err != nil {
			log.Fatal("admin bootstrap failed", zap.Error(err))
		}
	}

	m := metrics.NewCollector("clinicdesk")

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("database handle", zap.Error(err))
	}
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			m.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
		}
	}()

	tx := repository.NewTransactor(db)
	patientRepo := repository.NewPatientRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	reportRepo := repository.NewReportRepository(db)

	jwtManager := auth.NewJWTManager(cfg.JWT)
	mail := mailer.New(cfg.Mail)

	auditSvc := service.NewAuditService(auditRepo, log, m)
	authSvc := service.NewAuthService(accountRepo, jwtManager, mail, log)
	accountSvc := service.NewAccountService(accountRepo, log)
	registrationSvc := service.NewRegistrationService(visitRepo, patientRepo, settingRepo, tx, cfg.Clinic, m, log)
	recordSvc := service.NewRecordService(recordRepo, patientRepo, catalogRepo, invoiceRepo, settingRepo, tx, cfg.Clinic, m, log)
	patientSvc := service.NewPatientService(patientRepo, log)
	catalogSvc := service.NewCatalogService(catalogRepo, log)
	settingSvc := service.NewSettingService(settingRepo, cfg.Clinic, log)
	reportSvc := service.NewReportService(reportRepo, visitRepo, invoiceRepo, log)

	router := v1.NewRouter(v1.RouterDeps{
		Config:     cfg,
		Log:        log,
		Metrics:    m,
		JWTManager: jwtManager,
		Accounts:   accountRepo,

		Auth:     v1.NewAuthHandler(authSvc, auditSvc),
		Visits:   v1.NewVisitHandler(registrationSvc, auditSvc),
		Patients: v1.NewPatientHandler(patientSvc),
		Records:  v1.NewRecordHandler(recordSvc, auditSvc),
		Invoices: v1.NewInvoiceHandler(invoiceRepo),
		Catalog:  v1.NewCatalogHandler(catalogSvc),
		Settings: v1.NewSettingHandler(settingSvc, auditSvc),
		AccountH: v1.NewAccountHandler(accountSvc),
		Reports:  v1.NewReportHandler(reportSvc),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}

	// Flush buffered audit entries after in-flight requests finish.
	auditSvc.Shutdown()

	if err := sqlDB.Close(); err != nil {
		log.Warn("closing database", zap.Error(err))
	}

	log.Info("stopped")
}
