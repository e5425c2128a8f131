package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"soroban/backend/cache"
	"soroban/backend/config"
	"soroban/backend/middleware"
	"soroban/backend/routes"
	"soroban/backend/services"
	"soroban/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Кэши живут всё время жизни процесса, явного teardown не нужно
	dashboardCache := cache.New()
	staticCache := cache.New()
	dashboardService := services.NewDashboardService(db, cfg, dashboardCache, staticCache, logger)

	// Create Fiber app
	// 15 секунд — потолок на весь запрос, дальше лучше отдать ошибку
	app := fiber.New(fiber.Config{
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, dashboardService)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
