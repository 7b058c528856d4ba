package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jewelify/jewelify-server/internal/handlers"
	"github.com/jewelify/jewelify-server/internal/middleware"
	"github.com/jewelify/jewelify-server/internal/services"
	"github.com/jewelify/jewelify-server/internal/storage"
)

// Deps carries the services the routes are built from
type Deps struct {
	Store       storage.Store
	OTPService  *services.OTPService
	AuthService *services.AuthService
	Predictor   *services.Predictor
	Health      *handlers.HealthHandler
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Store, deps.OTPService, deps.AuthService)
	predictionHandler := handlers.NewPredictionHandler(deps.Store, deps.Predictor)
	historyHandler := handlers.NewHistoryHandler(deps.Store)

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Jewelify home page",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":      "/health",
				"auth":        "/auth",
				"predictions": "/predictions",
				"history":     "/history",
			},
		})
	})

	// Health check
	app.Get("/health", deps.Health.Check)

	// Auth routes
	auth := app.Group("/auth")
	auth.Get("/check-user/:mobile", authHandler.CheckUser)
	auth.Post("/send-otp", authHandler.SendOTP)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Authenticated routes
	requireAuth := middleware.RequireAuth(deps.AuthService, deps.Store)

	predictions := app.Group("/predictions", requireAuth)
	predictions.Post("/predict", predictionHandler.Predict)
	predictions.Get("/:id", predictionHandler.GetPrediction)

	app.Get("/history", requireAuth, historyHandler.GetHistory)
}
