package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"soroban/backend/config"
	"soroban/backend/controllers"
	"soroban/backend/middleware"
	"soroban/backend/services"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, dashboard *services.DashboardService) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	rateLimit := middleware.RateLimitMiddleware(cfg.RateLimitPerMinute)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Dashboard routes
	dashboardController := controllers.NewDashboardController(db, cfg, dashboard)
	app.Get("/api/dashboard/stats", rateLimit, authMiddleware, dashboardController.GetStats)
	app.Get("/api/leaderboard", authMiddleware, dashboardController.GetLeaderboard)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, dashboard)
	app.Post("/api/progress", authMiddleware, progressController.UpdateProgress)

	// Training routes
	trainingController := controllers.NewTrainingController(db, cfg, dashboard)
	app.Post("/api/exercises", authMiddleware, trainingController.SubmitExercise)
	app.Post("/api/compete", authMiddleware, trainingController.SubmitCompeteResult)

	// Quest routes
	questController := controllers.NewQuestController(db, cfg, dashboard)
	app.Post("/api/quests/:id/claim", authMiddleware, questController.ClaimQuest)
}
