// Package routes defines the API routing configuration. It wires
// repositories into services, services into handlers, and handlers into
// route groups with their middleware.
package routes

import (
	"log"

	"talkastro/internal/handlers"
	"talkastro/internal/middleware"
	"talkastro/internal/models"
	"talkastro/internal/repositories"
	"talkastro/internal/services/admin"
	"talkastro/internal/services/auth"
	"talkastro/internal/services/booking"
	"talkastro/internal/services/ledger"
	"talkastro/internal/services/payment"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App) {
	// Repositories
	walletRepo := repositories.NewWalletRepository(repositories.DB)
	userRepo := repositories.NewUserRepository(repositories.DB)
	astrologerRepo := repositories.NewAstrologerRepository(repositories.DB)
	bookingRepo := repositories.NewBookingRepository(repositories.DB)

	// Services
	authService := auth.NewService(userRepo, astrologerRepo)
	ledgerService := ledger.NewService(walletRepo, repositories.CacheService)
	bookingService := booking.NewService(bookingRepo, astrologerRepo, ledgerService)
	adminService := admin.NewService(walletRepo, userRepo, astrologerRepo, bookingRepo, repositories.CacheService)

	gateway, err := payment.NewStripeGateway()
	if err != nil {
		log.Println("stripe gateway not configured, recharges will fail:", err)
	}
	paymentService := payment.NewService(gateway, ledgerService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(ledgerService, paymentService)
	astrologerHandler := handlers.NewAstrologerHandler(astrologerRepo)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	adminHandler := handlers.NewAdminHandler(adminService)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to TalkAstro API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})
	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)
	api.Get("/astrologers", astrologerHandler.List)
	api.Get("/astrologers/:id", astrologerHandler.Get)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	protected := api.Use(authMiddleware.Handler)

	// Account
	protected.Get("/me", authHandler.Me)
	protected.Post("/logout", authHandler.Logout)
	protected.Post("/change-password", authHandler.ChangePassword)

	// Wallet
	wallet := protected.Group("/wallet")
	wallet.Get("/", middleware.HasPermission(models.PermissionWalletRead), walletHandler.GetWallet)
	wallet.Get("/transactions", middleware.HasPermission(models.PermissionWalletRead), walletHandler.GetTransactions)
	wallet.Post("/recharge", middleware.HasPermission(models.PermissionWalletWrite), walletHandler.Recharge)

	// Bookings
	bookings := protected.Group("/bookings")
	bookings.Post("/", middleware.HasPermission(models.PermissionBookingWrite), bookingHandler.Create)
	bookings.Get("/", middleware.HasPermission(models.PermissionBookingRead), bookingHandler.ListMine)
	bookings.Delete("/:id", middleware.HasPermission(models.PermissionBookingWrite), bookingHandler.Cancel)

	// Astrologer session management
	sessions := protected.Group("/sessions", middleware.AstrologerAuthMiddleware)
	sessions.Get("/", bookingHandler.ListForAstrologer)
	sessions.Post("/:id/confirm", bookingHandler.Confirm)
	sessions.Post("/:id/complete", bookingHandler.Complete)

	setupAdminRoutes(app, authMiddleware, adminHandler)
}

func setupAdminRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware, adminHandler *handlers.AdminHandler) {
	adminGroup := app.Group("/api/admin", authMiddleware.Handler, middleware.AdminAuthMiddleware)

	adminGroup.Get("/stats", middleware.HasPermission(models.PermissionReadAdmin), adminHandler.Stats)
	adminGroup.Get("/revenue", middleware.HasPermission(models.PermissionReadAdmin), adminHandler.Revenue)
	adminGroup.Get("/activity", middleware.HasPermission(models.PermissionReadAdmin), adminHandler.RecentActivity)
	adminGroup.Get("/wallets", middleware.HasPermission(models.PermissionReadAdmin), adminHandler.Wallets)
	adminGroup.Get("/astrologers/pending", middleware.HasPermission(models.PermissionReadAdmin), adminHandler.PendingAstrologers)
	adminGroup.Post("/astrologers/:id/approve", middleware.HasPermission(models.PermissionWriteAdmin), adminHandler.ApproveAstrologer)
}
