package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/jewelify/jewelify-server/database"
	"github.com/jewelify/jewelify-server/internal/config"
	"github.com/jewelify/jewelify-server/internal/handlers"
	"github.com/jewelify/jewelify-server/internal/jobs"
	"github.com/jewelify/jewelify-server/internal/models"
	"github.com/jewelify/jewelify-server/internal/routes"
	"github.com/jewelify/jewelify-server/internal/services"
	"github.com/jewelify/jewelify-server/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("environments/.env.development"); err != nil {
			log.Println("⚠️  No .env file found - checking environment variables")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize storage
	var store storage.Store

	// Check if we should use memory store (for testing)
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		// Connect to database
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		// Run migrations
		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.User{},
			&models.OTP{},
			&models.Prediction{},
			&models.JewelryImage{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		// Use database store
		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// Initialize Twilio-backed OTP delivery; missing credentials disable
	// the OTP endpoints but the rest of the API stays up
	var otpService *services.OTPService
	twilioService, err := services.NewTwilioService(&cfg.Twilio)
	if err != nil {
		log.Println("⚠️  Twilio credentials not found - OTP delivery disabled")
	} else {
		otpService = services.NewOTPService(store, twilioService, &cfg.OTP)
		log.Println("✅ Twilio service initialized")
	}

	// Initialize auth service
	authService, err := services.NewAuthService(&cfg.JWT)
	if err != nil {
		log.Fatal("Failed to initialize auth service:", err)
	}

	// Initialize predictor from the model artifacts
	var predictor *services.Predictor
	if cfg.Predictor.EmbeddingURL == "" {
		log.Println("⚠️  EMBEDDING_URL not set - prediction requests will fail until it is configured")
	}
	embeddingClient := services.NewEmbeddingClient(cfg.Predictor.EmbeddingURL)
	predictor, err = services.NewPredictor(&cfg.Predictor, embeddingClient)
	if err != nil {
		log.Printf("🚨 Failed to initialize predictor: %v", err)
		log.Println("⚠️  Prediction endpoints will report a server error")
		predictor = nil
	}

	// Start background jobs
	keepAliveJob := jobs.NewKeepAliveJob(&cfg.KeepAlive)
	keepAliveJob.Start()

	otpCleanupJob := jobs.NewOTPCleanupJob(store, cfg.OTP.CleanupInterval)
	otpCleanupJob.Start()

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Jewelify Server v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health handler with live dependency checks
	healthHandler := handlers.NewHealthHandler("1.0.0")
	healthHandler.TwilioReady = otpService != nil
	healthHandler.PredictorReady = predictor != nil
	healthHandler.EmbeddingReady = cfg.Predictor.EmbeddingURL != ""
	healthHandler.KeepAliveActive = keepAliveJob.IsRunning()
	if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
		healthHandler.DatabaseCheck = func() error {
			sqlDB, err := database.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		}
	}

	// Setup routes
	routes.SetupRoutes(app, routes.Deps{
		Store:       store,
		OTPService:  otpService,
		AuthService: authService,
		Predictor:   predictor,
		Health:      healthHandler,
	})

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping background jobs...")
		keepAliveJob.Stop()
		otpCleanupJob.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 Jewelify server starting on port %s", cfg.Server.Port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("📱 SMS OTP: %s", getTwilioStatus(otpService != nil))
	log.Printf("💎 Predictor: %s", getPredictorStatus(predictor))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Server.Port))
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getTwilioStatus(configured bool) string {
	if !configured {
		return "Not configured"
	}
	return "Configured"
}

func getPredictorStatus(p *services.Predictor) string {
	if p == nil {
		return "Not loaded"
	}
	return "Loaded"
}
