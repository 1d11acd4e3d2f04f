package main

import (
	"fmt"
	"log"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/config"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/database"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/handlers"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/middleware"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/routes"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/scheduler"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/service"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load YAML configuration
	if err := config.LoadConfig(); err != nil {
		log.Printf("Warning: Failed to load YAML config: %v", err)
		log.Println("Using default configuration...")
	}
	appConfig := config.GetConfig()

	// Initialize database
	db, err := database.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CustomLoggingMiddleware())
	r.Use(middleware.CORS())

	// WhatsApp gateway client
	whatsappService := service.NewWhatsAppService()

	// Email providers, urutan menentukan prioritas fallback
	var providers []service.EmailProvider
	if appConfig.Email.ResendAPIKey != "" {
		providers = append(providers, service.NewResendService(
			appConfig.Email.ResendAPIKey, appConfig.Email.FromEmail, appConfig.Email.FromName))
	}
	if appConfig.Email.MailerSendAPIKey != "" {
		providers = append(providers, service.NewMailerSendService(
			appConfig.Email.MailerSendAPIKey, appConfig.Email.FromEmail, appConfig.Email.FromName))
	}
	var emailService *service.MultiProviderEmailService
	if len(providers) > 0 {
		emailService = service.NewMultiProviderEmailService(providers)
	} else {
		log.Println("Warning: no email provider configured, OTP and report emails disabled")
	}

	// Core services
	dropService := services.NewDropService(db)
	dispatchService := services.NewDispatchService(
		services.NewPostgresDropStore(db),
		services.NewPostgresGroupDirectory(db),
		whatsappService,
		time.Duration(appConfig.WhatsApp.SendDelayMs)*time.Millisecond,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, emailService)
	dropHandler := handlers.NewDropHandler(dropService, dispatchService)
	productHandler := handlers.NewProductHandler(db)
	categoryHandler := handlers.NewCategoryHandler(db)
	groupHandler := handlers.NewWhatsAppGroupHandler(db, whatsappService)
	paymentHandler := handlers.NewPaymentHandler(db, service.NewMidtransService())
	settingsHandler := handlers.NewSettingsHandler(db, whatsappService)

	// Setup routes
	routes.SetupRoutes(r, authHandler, dropHandler, productHandler, categoryHandler, groupHandler, paymentHandler, settingsHandler)

	// Background poller for scheduled drops. Report emails only go out when
	// notifications are switched on.
	if appConfig.Features.DispatchPollerEnabled() {
		adminEmail := ""
		if appConfig.Features.NotificationsEnabled() {
			adminEmail = appConfig.Email.AdminEmail
		}
		poller := scheduler.NewDispatchPoller(dropService, dispatchService, emailService, adminEmail)
		if err := poller.Start(appConfig.Dispatch.PollSchedule); err != nil {
			log.Fatal("Failed to start dispatch poller:", err)
		}
		defer poller.Stop()
	}

	// Start server
	port := fmt.Sprintf("%d", appConfig.Server.Port)
	host := appConfig.Server.Host

	log.Printf("Server starting on %s:%s", host, port)
	if err := r.Run(host + ":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
