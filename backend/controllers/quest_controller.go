package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"soroban/backend/config"
	"soroban/backend/models"
	"soroban/backend/services"
	"soroban/backend/utils"
)

type QuestController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Dashboard *services.DashboardService
}

func NewQuestController(db *gorm.DB, cfg *config.Config, dashboard *services.DashboardService) *QuestController {
	return &QuestController{DB: db, Cfg: cfg, Dashboard: dashboard}
}

// ClaimQuest godoc
// @Summary Claim the reward of a completed quest
// @Description Claiming freezes the quest: progress is never recomputed afterwards
// @Tags quests
// @Produce json
// @Security ApiKeyAuth
// @Router /quests/{id}/claim [post]
func (qc *QuestController) ClaimQuest(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	questID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quest ID")
	}

	var quest models.Quest
	if err := qc.DB.First(&quest, questID).Error; err != nil {
		return utils.NotFound(c, "Quest not found")
	}

	var userQuest models.UserQuest
	err = qc.DB.Where("user_id = ? AND quest_id = ?", userID, quest.ID).First(&userQuest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.BadRequest(c, "Quest not completed yet")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not query quest progress")
	}

	if userQuest.ClaimedAt != nil {
		return utils.BadRequest(c, "Quest already claimed")
	}
	if quest.TargetCount <= 0 || userQuest.Progress < quest.TargetCount {
		return utils.BadRequest(c, "Quest not completed yet")
	}

	// Заявка — терминальное состояние
	now := time.Now()
	userQuest.ClaimedAt = &now
	if userQuest.CompletedAt == nil {
		userQuest.CompletedAt = &now
	}
	if err := qc.DB.Save(&userQuest).Error; err != nil {
		return utils.InternalServerError(c, "Could not claim quest")
	}

	// Начисляем награду
	if quest.RewardStars > 0 || quest.RewardDiamonds > 0 {
		qc.DB.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"total_stars": gorm.Expr("total_stars + ?", quest.RewardStars),
			"diamonds":    gorm.Expr("diamonds + ?", quest.RewardDiamonds),
		})
	}

	qc.Dashboard.InvalidateUser(userID)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"quest_id":        quest.ID,
		"reward_stars":    quest.RewardStars,
		"reward_diamonds": quest.RewardDiamonds,
		"claimed_at":      now,
	})
}
