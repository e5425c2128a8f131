package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"soroban/backend/config"
	"soroban/backend/models"
	"soroban/backend/services"
	"soroban/backend/utils"
)

type DashboardController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Service *services.DashboardService
}

func NewDashboardController(db *gorm.DB, cfg *config.Config, service *services.DashboardService) *DashboardController {
	return &DashboardController{DB: db, Cfg: cfg, Service: service}
}

// GetStats godoc
// @Summary Aggregated dashboard statistics for the current student
// @Description Cached composite view: progress, exercises, compete, quests, achievements, leaderboard, activity, certificates
// @Tags dashboard
// @Produce json
// @Param refresh query int false "Set to 1 to bypass the cache"
// @Security ApiKeyAuth
// @Router /dashboard/stats [get]
func (dc *DashboardController) GetStats(c *fiber.Ctx) error {
	claims, err := utils.ExtractTokenClaims(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	userID := claims.UserID
	if userID == 0 {
		// Запасной путь для только что зарегистрированных:
		// в токене нет id, ищем по email
		var user models.User
		if err := dc.DB.Where("email = ?", claims.Email).First(&user).Error; err != nil {
			return utils.NotFound(c, "User not found")
		}
		userID = user.ID
	}

	forceRefresh := c.Query("refresh") == "1"

	snapshot, err := dc.Service.GetDashboard(c.UserContext(), userID, forceRefresh)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Failed to build dashboard")
	}

	return c.JSON(snapshot)
}

// GetLeaderboard godoc
// @Summary Current student's leaderboard position
// @Tags dashboard
// @Produce json
// @Security ApiKeyAuth
// @Router /leaderboard [get]
func (dc *DashboardController) GetLeaderboard(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	rank, err := dc.Service.LeaderboardRank(c.UserContext(), userID)
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch leaderboard")
	}

	return utils.Success(c, fiber.StatusOK, rank)
}
