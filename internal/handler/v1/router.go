package v1

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/internal/handler/middleware"
	"github.com/clinicdesk/clinicdesk/pkg/auth"
	"github.com/clinicdesk/clinicdesk/pkg/metrics"
)

// RouterDeps bundles everything the HTTP layer needs.
type RouterDeps struct {
	Config     *config.Config
	Log        *zap.Logger
	Metrics    *metrics.Collector
	JWTManager *auth.JWTManager
	Accounts   domain.AccountRepository

	Auth     *AuthHandler
	Visits   *VisitHandler
	Patients *PatientHandler
	Records  *RecordHandler
	Invoices *InvoiceHandler
	Catalog  *CatalogHandler
	Settings *SettingHandler
	AccountH *AccountHandler
	Reports  *ReportHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(d.Log))
	router.Use(middleware.Metrics(d.Metrics))

	router.Use(cors.New(cors.Config{
		AllowOrigins:  d.Config.CORS.AllowedOrigins,
		AllowMethods:  d.Config.CORS.AllowedMethods,
		AllowHeaders:  d.Config.CORS.AllowedHeaders,
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        d.Config.CORS.MaxAge,
	}))

	globalLimiter := middleware.NewRateLimiter(
		d.Config.RateLimit.RequestsPerSecond,
		d.Config.RateLimit.BurstSize,
	)
	router.Use(globalLimiter.Middleware())

	// Auth endpoints get a much tighter budget to slow credential stuffing.
	authLimiter := middleware.NewRateLimiter(
		float64(d.Config.RateLimit.AuthRequestsPerMinute)/60.0,
		d.Config.RateLimit.AuthRequestsPerMinute,
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": d.Config.App.Name,
			"version": d.Config.App.Version,
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := router.Group("/api/v1")

	// Public surface: appointment self-registration and login.
	api.POST("/register", d.Visits.Register)
	api.POST("/auth/login", authLimiter.Middleware(), d.Auth.Login)
	api.POST("/auth/refresh", authLimiter.Middleware(), d.Auth.Refresh)
	api.POST("/auth/password-reset", authLimiter.Middleware(), d.Auth.ResetPassword)

	authed := api.Group("")
	authed.Use(middleware.Authenticate(d.JWTManager, d.Accounts))

	authed.GET("/auth/me", d.Auth.Me)
	authed.POST("/auth/change-password", d.Auth.ChangePassword)

	perm := func(resource, action string) gin.HandlerFunc {
		return middleware.RequirePermission(resource, action)
	}

	patients := authed.Group("/patients")
	{
		patients.GET("", perm(domain.ResourcePatients, domain.ActionRead), d.Patients.List)
		patients.GET("/:id", perm(domain.ResourcePatients, domain.ActionRead), d.Patients.Get)
		patients.PUT("/:id", perm(domain.ResourcePatients, domain.ActionUpdate), d.Patients.Update)
	}

	queue := authed.Group("/queue")
	{
		queue.GET("", perm(domain.ResourceVisits, domain.ActionRead), d.Visits.ListQueue)
		queue.GET("/:id", perm(domain.ResourceVisits, domain.ActionRead), d.Visits.Get)
		queue.POST("", perm(domain.ResourceVisits, domain.ActionCreate), d.Visits.Register)
		queue.PUT("/:id/date", perm(domain.ResourceVisits, domain.ActionUpdate), d.Visits.Move)
		queue.DELETE("/:id", perm(domain.ResourceVisits, domain.ActionDelete), d.Visits.Cancel)
	}

	records := authed.Group("/records")
	{
		records.GET("", perm(domain.ResourceRecords, domain.ActionRead), d.Records.List)
		records.GET("/:id", perm(domain.ResourceRecords, domain.ActionRead), d.Records.Get)
		records.POST("", perm(domain.ResourceRecords, domain.ActionCreate), d.Records.Create)
		records.PUT("/:id", perm(domain.ResourceRecords, domain.ActionUpdate), d.Records.Update)
		records.GET("/:id/invoice", perm(domain.ResourceInvoices, domain.ActionRead), d.Records.Invoice)
	}

	invoices := authed.Group("/invoices")
	{
		invoices.GET("", perm(domain.ResourceInvoices, domain.ActionRead), d.Invoices.List)
		invoices.GET("/:id", perm(domain.ResourceInvoices, domain.ActionRead), d.Invoices.Get)
	}

	catalogGroup := authed.Group("/catalog")
	{
		read := perm(domain.ResourceCatalog, domain.ActionRead)
		create := perm(domain.ResourceCatalog, domain.ActionCreate)
		update := perm(domain.ResourceCatalog, domain.ActionUpdate)
		del := perm(domain.ResourceCatalog, domain.ActionDelete)

		catalogGroup.GET("/disease-types", read, d.Catalog.ListDiseaseTypes)
		catalogGroup.POST("/disease-types", create, d.Catalog.CreateDiseaseType)
		catalogGroup.PUT("/disease-types/:id", update, d.Catalog.UpdateDiseaseType)
		catalogGroup.DELETE("/disease-types/:id", del, d.Catalog.DeleteDiseaseType)

		catalogGroup.GET("/units", read, d.Catalog.ListUnits)
		catalogGroup.POST("/units", create, d.Catalog.CreateUnit)
		catalogGroup.PUT("/units/:id", update, d.Catalog.UpdateUnit)
		catalogGroup.DELETE("/units/:id", del, d.Catalog.DeleteUnit)

		catalogGroup.GET("/instructions", read, d.Catalog.ListInstructions)
		catalogGroup.POST("/instructions", create, d.Catalog.CreateInstruction)
		catalogGroup.PUT("/instructions/:id", update, d.Catalog.UpdateInstruction)
		catalogGroup.DELETE("/instructions/:id", del, d.Catalog.DeleteInstruction)
	}

	medications := authed.Group("/medications")
	{
		medications.GET("", perm(domain.ResourceMedications, domain.ActionRead), d.Catalog.ListMedications)
		medications.GET("/:id", perm(domain.ResourceMedications, domain.ActionRead), d.Catalog.GetMedication)
		medications.POST("", perm(domain.ResourceMedications, domain.ActionCreate), d.Catalog.CreateMedication)
		medications.PUT("/:id", perm(domain.ResourceMedications, domain.ActionUpdate), d.Catalog.UpdateMedication)
		medications.DELETE("/:id", perm(domain.ResourceMedications, domain.ActionDelete), d.Catalog.DeleteMedication)
	}

	settings := authed.Group("/settings")
	{
		settings.GET("", perm(domain.ResourceSettings, domain.ActionRead), d.Settings.List)
		settings.PUT("/:key", perm(domain.ResourceSettings, domain.ActionUpdate), d.Settings.Set)
	}

	accounts := authed.Group("/accounts")
	{
		accounts.GET("", perm(domain.ResourceAccounts, domain.ActionRead), d.AccountH.List)
		accounts.GET("/:id", perm(domain.ResourceAccounts, domain.ActionRead), d.AccountH.Get)
		accounts.POST("", perm(domain.ResourceAccounts, domain.ActionCreate), d.AccountH.Create)
		accounts.PUT("/:id", perm(domain.ResourceAccounts, domain.ActionUpdate), d.AccountH.Update)
	}

	roles := authed.Group("/roles")
	{
		roles.GET("", perm(domain.ResourceRoles, domain.ActionRead), d.AccountH.ListGroups)
		roles.POST("", perm(domain.ResourceRoles, domain.ActionCreate), d.AccountH.CreateGroup)
		roles.PUT("/:id", perm(domain.ResourceRoles, domain.ActionUpdate), d.AccountH.UpdateGroup)
		roles.DELETE("/:id", perm(domain.ResourceRoles, domain.ActionDelete), d.AccountH.DeleteGroup)
	}
	authed.GET("/permissions", perm(domain.ResourceRoles, domain.ActionRead), d.AccountH.ListPermissions)

	reports := authed.Group("/reports")
	{
		reports.GET("/summary", perm(domain.ResourceReports, domain.ActionRead), d.Reports.Summary)
		reports.GET("/revenue", perm(domain.ResourceReports, domain.ActionRead), d.Reports.MonthlyRevenue)
		reports.GET("/medication-usage", perm(domain.ResourceReports, domain.ActionRead), d.Reports.MedicationUsage)
	}

	return router
}
