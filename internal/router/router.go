// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/r2certify/r2v3-backend/internal/config"
	"github.com/r2certify/r2v3-backend/internal/handlers"
	"github.com/r2certify/r2v3-backend/internal/middleware"
	"github.com/r2certify/r2v3-backend/internal/services"
	"github.com/r2certify/r2v3-backend/internal/utils"
)

// Initialize wires services, handlers, and routes. The intake service is
// returned so the caller can flush pending drafts on shutdown.
func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *services.IntakeService) {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	paymentService := services.NewPaymentService(db, cfg)
	licenseService := services.NewLicenseService(services.NewLicenseRepository(db), paymentService)

	authService := services.NewAuthService(db, cfg)
	onboardingService := services.NewOnboardingService(db, cfg, licenseService)
	intakeService := services.NewIntakeService(db, cfg)
	assessmentService := services.NewAssessmentService(db)
	exportService := services.NewExportService(db, cfg, assessmentService, storageService, notificationService)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	onboardingHandler := handlers.NewOnboardingHandler(onboardingService)
	licenseHandler := handlers.NewLicenseHandler(licenseService, paymentService)
	intakeHandler := handlers.NewIntakeHandler(intakeService)
	assessmentHandler := handlers.NewAssessmentHandler(assessmentService, storageService)
	exportHandler := handlers.NewExportHandler(exportService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Onboarding routes
		onboarding := v1.Group("/onboarding")
		onboarding.Use(middleware.AuthRequired())
		{
			onboarding.GET("/status", onboardingHandler.GetStatus)
			onboarding.PUT("/organization", onboardingHandler.SaveOrganization)
			onboarding.PUT("/facility", onboardingHandler.SaveFacility)
			onboarding.POST("/complete", onboardingHandler.Complete)

			// Consultant tenants register the organizations they audit
			clients := onboarding.Group("/clients")
			clients.Use(middleware.ConsultantRequired())
			{
				clients.POST("/organization", onboardingHandler.SaveClientOrganization)
				clients.POST("/facility", onboardingHandler.SaveClientFacility)
			}
		}

		// License and checkout routes
		licenses := v1.Group("/licenses")
		licenses.Use(middleware.AuthRequired())
		{
			licenses.GET("", licenseHandler.List)
			licenses.GET("/plans", licenseHandler.GetPlans)
			licenses.POST("/activate", licenseHandler.Activate)
			licenses.GET("/status", licenseHandler.GetStatus)
		}

		stripe := v1.Group("/stripe")
		stripe.Use(middleware.AuthRequired())
		{
			stripe.POST("/checkout-session", licenseHandler.CreateCheckoutSession)
			stripe.GET("/sessions/:sessionId", licenseHandler.GetSessionStatus)
			stripe.POST("/mock/complete", licenseHandler.CompleteMockSession)
		}

		// Intake routes
		intake := v1.Group("/intake-forms")
		intake.Use(middleware.AuthRequired())
		{
			intake.GET("/current", intakeHandler.GetCurrent)
			intake.GET("/:formId", intakeHandler.Get)
			intake.PUT("/:formId", intakeHandler.Update)
			intake.PATCH("/:formId", intakeHandler.Update)
			intake.POST("/:formId/appendices", intakeHandler.ToggleAppendix)
			intake.GET("/:formId/validate", intakeHandler.Validate)
			intake.POST("/:formId/submit", intakeHandler.Submit)
			intake.GET("/:formId/facilities", intakeHandler.ListFacilities)
			intake.POST("/:formId/facilities", intakeHandler.AddFacility)
		}

		intakeFacilities := v1.Group("/intake-facilities")
		intakeFacilities.Use(middleware.AuthRequired())
		{
			intakeFacilities.PUT("/:facilityId", intakeHandler.UpdateFacility)
			intakeFacilities.DELETE("/:facilityId", intakeHandler.DeleteFacility)
		}

		// Assessment routes
		assessments := v1.Group("/assessments")
		assessments.Use(middleware.AuthRequired())
		{
			assessments.GET("/current", assessmentHandler.GetCurrent)
			assessments.GET("/:assessmentId", assessmentHandler.Get)
			assessments.GET("/:assessmentId/questions", assessmentHandler.Questions)
			assessments.POST("/:assessmentId/questions/:questionId/answer", assessmentHandler.Answer)
			assessments.GET("/:assessmentId/coverage", assessmentHandler.Coverage)
			assessments.POST("/evidence", assessmentHandler.UploadEvidence)

			exports := assessments.Group("/:assessmentId/exports")
			exports.Use(middleware.ExportRateLimit())
			{
				exports.POST("/:format", exportHandler.Generate)
				exports.GET("/:format", exportHandler.Generate)
				exports.GET("", exportHandler.History)
			}
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/tenants", adminHandler.GetTenants)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/artifacts", "./artifacts")
	}

	return r, intakeService
}
