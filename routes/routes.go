package routes

import (
	"github.com/gofiber/fiber/v2"

	"lotes-backend/controllers"
	"lotes-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/auth/register", controllers.Register)
	api.Post("/auth/login", controllers.Login)
	api.Post("/auth/logout", controllers.Logout)
	api.Post("/auth/forgot-password", controllers.RequestPasswordReset)
	api.Post("/auth/reset-password", controllers.ResetPassword)

	// Public inventory browsing
	api.Get("/lots", controllers.GetLots)
	api.Get("/lots/:id", controllers.GetLot)
	api.Get("/stages", controllers.GetStages)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard for mutating requests (keyed retries replay the
	// stored response instead of double-reserving or double-paying)
	protected.Use(middlewares.Idempotency())

	// Own account
	protected.Get("/auth/profile", controllers.GetProfile)
	protected.Put("/auth/profile", controllers.UpdateProfile)

	// Purchases
	protected.Post("/purchases", controllers.CreatePurchase)
	protected.Get("/purchases/mine", controllers.GetMyPurchases)
	protected.Get("/purchases/statement", controllers.GetAccountStatement)
	protected.Get("/purchases/:id", controllers.GetPurchase)

	// Payments
	protected.Post("/payments", controllers.CreatePayment)
	protected.Get("/payments/mine", controllers.GetMyPayments)
	protected.Get("/payments/:id/receipt", controllers.GetPaymentReceipt)

	// PQRS
	protected.Post("/pqrs", controllers.CreatePQRS)
	protected.Get("/pqrs/mine", controllers.GetMyPQRS)
	protected.Get("/pqrs/:id", controllers.GetPQRS)

	// Admin endpoints
	admin := protected.Group("", middlewares.RequireAdmin())

	admin.Get("/users", controllers.GetUsers)
	admin.Post("/users", controllers.CreateUser)
	admin.Get("/users/:id", controllers.GetUser)
	admin.Put("/users/:id", controllers.UpdateUser)
	admin.Put("/users/:id/status", controllers.ToggleUserStatus)
	admin.Get("/dashboard", controllers.GetDashboardStats)

	admin.Post("/stages", controllers.CreateStage)
	admin.Put("/stages/:id", controllers.UpdateStage)

	admin.Post("/lots", controllers.CreateLot)
	admin.Put("/lots/:id", controllers.UpdateLot)
	admin.Put("/lots/:id/status", controllers.ChangeLotStatus)
	admin.Delete("/lots/:id", controllers.DeleteLot)
	admin.Get("/lots-stats", controllers.GetLotStats)

	admin.Get("/purchases", controllers.GetAllPurchases)
	admin.Get("/purchases/statement/:clientId", controllers.GetAccountStatement)
	admin.Get("/payments", controllers.GetAllPayments)

	admin.Get("/pqrs", controllers.GetAllPQRS)
	admin.Get("/pqrs-stats", controllers.GetPQRSStats)
	admin.Put("/pqrs/:id", controllers.UpdatePQRS)
}
