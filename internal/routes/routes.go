package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/billing"
	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/handlers"
	"dental-clinic-server/internal/intake"
	"dental-clinic-server/internal/middleware"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/scheduling"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Core engines
	schedulingEngine := scheduling.NewEngine(db)
	billingService := billing.NewService(db)
	intakeAdapter := intake.NewAdapter(db, schedulingEngine)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	patientHandler := handlers.NewPatientHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, schedulingEngine)
	medicalRecordHandler := handlers.NewMedicalRecordHandler(db)
	invoiceHandler := handlers.NewInvoiceHandler(db, billingService)
	publicHandler := handlers.NewPublicHandler(intakeAdapter)
	reviewsHandler := handlers.NewReviewsHandler(cfg)
	setupHandler := handlers.NewSetupHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api")
	{
		public.POST("/auth/login", authHandler.Login)
		public.POST("/public/reservations", publicHandler.CreateReservation)
		public.GET("/reviews", reviewsHandler.GetReviews)
		public.POST("/setup/init-admin", setupHandler.InitAdmin)
	}

	// Authenticated routes
	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		authRoutes := private.Group("/auth")
		{
			authRoutes.GET("/profile", authHandler.GetProfile)
			authRoutes.PUT("/profile", authHandler.UpdateProfile)
			authRoutes.POST("/change-password", authHandler.ChangePassword)
		}

		// Staff account management (admin-only except the doctor listing)
		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/doctors", userHandler.GetDoctors)

			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin)) // Only Admins
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		patientRoutes := private.Group("/patients")
		{
			patientRoutes.GET("", patientHandler.GetPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID)
			patientRoutes.POST("", patientHandler.CreatePatient)
			patientRoutes.PUT("/:id", patientHandler.UpdatePatient)
			patientRoutes.DELETE("/:id", patientHandler.DeletePatient)
		}

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.PUT("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.DELETE("/:id", appointmentHandler.DeleteAppointment)
		}

		medicalRecordRoutes := private.Group("/medical-records")
		{
			medicalRecordRoutes.GET("", medicalRecordHandler.GetMedicalRecords)
			medicalRecordRoutes.GET("/:id", medicalRecordHandler.GetMedicalRecordByID)
			medicalRecordRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), medicalRecordHandler.CreateMedicalRecord)
			medicalRecordRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), medicalRecordHandler.UpdateMedicalRecord)
			medicalRecordRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), medicalRecordHandler.DeleteMedicalRecord)
		}

		invoiceRoutes := private.Group("/invoices")
		{
			invoiceRoutes.GET("", invoiceHandler.GetInvoices)
			invoiceRoutes.GET("/:id", invoiceHandler.GetInvoiceByID)
			invoiceRoutes.POST("", invoiceHandler.CreateInvoice)
			invoiceRoutes.PUT("/:id", invoiceHandler.UpdateInvoice)
			invoiceRoutes.DELETE("/:id", invoiceHandler.DeleteInvoice)
			invoiceRoutes.POST("/:id/payments", invoiceHandler.AddPayment)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "timestamp": time.Now().Format(time.RFC3339)})
	})
}
