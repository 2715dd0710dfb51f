package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hivcare-app-server/internal/config"
	"hivcare-app-server/internal/handlers"
	"hivcare-app-server/internal/middleware"
	"hivcare-app-server/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	patientHandler := handlers.NewPatientHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, log)
	htsHandler := handlers.NewHTSHandler(db)
	enrollmentHandler := handlers.NewEnrollmentHandler(db, log)
	prescriptionHandler := handlers.NewPrescriptionHandler(db, log)
	drugHandler := handlers.NewDrugHandler(db)
	labOrderHandler := handlers.NewLabOrderHandler(db, log)
	messageHandler := handlers.NewMessageHandler(db)

	clinicalStaff := middleware.RoleAuthMiddleware(models.RoleClinician, models.RoleAdmin)
	labStaff := middleware.RoleAuthMiddleware(models.RoleLabTech, models.RoleClinician, models.RoleAdmin)
	pharmacyStaff := middleware.RoleAuthMiddleware(models.RolePharmacist, models.RoleAdmin)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User administration
		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/clinicians", userHandler.GetClinicians)

			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeactivateUser)
			}
		}

		// Patient registry
		patientRoutes := private.Group("/patients")
		{
			patientRoutes.POST("", clinicalStaff, patientHandler.RegisterPatient)
			patientRoutes.GET("", patientHandler.GetPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID)
			patientRoutes.PUT("/:id", clinicalStaff, patientHandler.UpdatePatient)
		}

		// Appointment lifecycle
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", clinicalStaff, appointmentHandler.ScheduleAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)

			appointmentRoutes.POST("/:id/check-in", clinicalStaff, appointmentHandler.CheckIn)
			appointmentRoutes.POST("/:id/start", clinicalStaff, appointmentHandler.StartVisit)
			appointmentRoutes.POST("/:id/no-show", clinicalStaff, appointmentHandler.MarkNoShow)
			appointmentRoutes.POST("/:id/cancel", clinicalStaff, appointmentHandler.Cancel)
			appointmentRoutes.POST("/:id/reschedule", clinicalStaff, appointmentHandler.Reschedule)
			appointmentRoutes.POST("/:id/complete", clinicalStaff, appointmentHandler.Complete)
		}

		// HIV testing services
		htsRoutes := private.Group("/hts-records")
		{
			htsRoutes.POST("", clinicalStaff, htsHandler.CreateHTSRecord)
			htsRoutes.GET("", htsHandler.GetHTSRecords)
			htsRoutes.GET("/eligible/:program", clinicalStaff, htsHandler.GetEligibleRecords)
		}

		// Program enrollments
		enrollmentRoutes := private.Group("/enrollments")
		{
			enrollmentRoutes.POST("/art", clinicalStaff, enrollmentHandler.EnrollART)
			enrollmentRoutes.POST("/pep", clinicalStaff, enrollmentHandler.EnrollPEP)
			enrollmentRoutes.POST("/prep", clinicalStaff, enrollmentHandler.EnrollPrEP)
			enrollmentRoutes.GET("", enrollmentHandler.GetEnrollments)
		}

		// Prescriptions and pharmacy catalog
		prescriptionRoutes := private.Group("/prescriptions")
		{
			prescriptionRoutes.POST("", clinicalStaff, prescriptionHandler.CreatePrescription)
			prescriptionRoutes.GET("", prescriptionHandler.GetPrescriptions)
			prescriptionRoutes.GET("/:id", prescriptionHandler.GetPrescriptionByID)
		}
		drugRoutes := private.Group("/drugs")
		{
			drugRoutes.POST("", pharmacyStaff, drugHandler.CreateDrug)
			drugRoutes.GET("", drugHandler.GetDrugs)
			drugRoutes.PATCH("/:id/stock", pharmacyStaff, drugHandler.UpdateDrugStock)
		}

		// Laboratory orders
		labRoutes := private.Group("/lab-orders")
		{
			labRoutes.POST("", clinicalStaff, labOrderHandler.CreateLabOrder)
			labRoutes.GET("", labOrderHandler.GetLabOrders)
			labRoutes.POST("/:id/collect-sample", labStaff, labOrderHandler.CollectSample)
			labRoutes.POST("/:id/start", labStaff, labOrderHandler.BeginProcessing)
			labRoutes.POST("/:id/result", labStaff, labOrderHandler.EnterResult)
			labRoutes.POST("/:id/review", clinicalStaff, labOrderHandler.ReviewResult)
			labRoutes.POST("/:id/cancel", clinicalStaff, labOrderHandler.CancelOrder)
			labRoutes.POST("/:id/reject-sample", labStaff, labOrderHandler.RejectSample)
		}

		// Messaging
		messageRoutes := private.Group("/messages")
		{
			messageRoutes.POST("/send", messageHandler.SendMessage)
			messageRoutes.GET("", messageHandler.GetMessagesForUser)
			messageRoutes.PATCH("/:messageId/read", messageHandler.MarkMessageAsRead)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
