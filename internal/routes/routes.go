package routes

import (
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/config"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/handlers"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authHandler *handlers.AuthHandler, dropHandler *handlers.DropHandler, productHandler *handlers.ProductHandler, categoryHandler *handlers.CategoryHandler, groupHandler *handlers.WhatsAppGroupHandler, paymentHandler *handlers.PaymentHandler, settingsHandler *handlers.SettingsHandler) {
	// API v1
	v1 := r.Group("/api/v1")

	// Auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", middleware.RateLimit(1, 5), authHandler.Register)
		auth.POST("/login", middleware.RateLimit(1, 5), authHandler.Login)
		auth.GET("/profile", middleware.AuthRequired(), authHandler.GetProfile)
		auth.POST("/otp/generate", middleware.RateLimit(0.2, 3), authHandler.GenerateResetOTP)
		auth.PUT("/reset-password", middleware.RateLimit(0.2, 3), authHandler.ResetPasswordWithOTP) // No auth required for forgot password
	}

	// Drop routes (admin only)
	drops := v1.Group("/drops")
	drops.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		drops.POST("", dropHandler.CreateDrop)
		drops.GET("", dropHandler.GetDrops)
		drops.GET("/analytics", dropHandler.GetDropAnalytics)
		drops.GET("/overdue", dropHandler.GetOverdueDrops)
		drops.GET("/calendar", dropHandler.GetDropsForDate)
		drops.GET("/:id", dropHandler.GetDrop)
		drops.PUT("/:id", dropHandler.UpdateDrop)
		drops.DELETE("/:id", dropHandler.DeleteDrop)
		drops.POST("/:id/schedule", dropHandler.ScheduleDrop)
		drops.POST("/:id/cancel", dropHandler.CancelDrop)
		drops.POST("/:id/send", dropHandler.SendDropToAllGroups)
		drops.POST("/:id/send/:group_id", dropHandler.SendDropToGroup)
	}

	// Product routes (admin only)
	products := v1.Group("/products")
	products.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		products.POST("", productHandler.CreateProduct)
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.PUT("/:id", productHandler.UpdateProduct)
		products.DELETE("/:id", productHandler.DeleteProduct)
	}

	// Category routes (admin only)
	categories := v1.Group("/categories")
	categories.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		categories.POST("", categoryHandler.CreateCategory)
		categories.GET("", categoryHandler.GetCategories)
		categories.PUT("/:id", categoryHandler.UpdateCategory)
		categories.DELETE("/:id", categoryHandler.DeleteCategory)
	}

	// WhatsApp group routes (admin only)
	groups := v1.Group("/whatsapp/groups")
	groups.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		groups.GET("", groupHandler.GetGroups)
		groups.POST("/sync", groupHandler.SyncGroups)
		groups.PUT("/:id", groupHandler.UpdateGroup)
	}

	// Session status is read-only but still admin-gated
	v1.GET("/whatsapp/session", middleware.AuthRequired(), middleware.AdminRequired(), groupHandler.GetSessionStatus)

	// Payment routes, only mounted when the feature is enabled
	if config.GetConfig().Features.PaymentsEnabled() {
		payments := v1.Group("/payments")
		{
			payments.POST("", middleware.RateLimit(2, 10), paymentHandler.CreatePayment)
			payments.GET("", middleware.AuthRequired(), middleware.AdminRequired(), paymentHandler.GetPayments)
			payments.POST("/notification", paymentHandler.PaymentNotification) // Midtrans callback, no auth
		}
	}

	// Settings routes (admin only)
	settings := v1.Group("/settings")
	settings.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		settings.GET("", settingsHandler.GetSettings)
		settings.PUT("", settingsHandler.UpdateSettings)
		settings.GET("/setup-status", settingsHandler.GetSetupStatus)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
