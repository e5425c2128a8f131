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

type ProgressController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Dashboard *services.DashboardService
}

func NewProgressController(db *gorm.DB, cfg *config.Config, dashboard *services.DashboardService) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Dashboard: dashboard}
}

// UpdateProgress godoc
// @Summary Record a lesson attempt or completion
// @Description Upserts the (user, level, lesson) progress record and awards stars
// @Tags progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /progress [post]
func (pc *ProgressController) UpdateProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type ProgressInput struct {
		LevelID   uint    `json:"level_id"`
		LessonID  uint    `json:"lesson_id"`
		Completed bool    `json:"completed"`
		Stars     int     `json:"stars"`
		Accuracy  float64 `json:"accuracy"`
		TimeSpent int     `json:"time_spent"`
	}

	var input ProgressInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.LevelID == 0 || input.LessonID == 0 {
		return utils.BadRequest(c, "level_id and lesson_id are required")
	}

	var lesson models.Lesson
	if err := pc.DB.First(&lesson, input.LessonID).Error; err != nil {
		return utils.NotFound(c, "Lesson not found")
	}
	if input.Stars < 0 {
		input.Stars = 0
	}
	if input.Stars > lesson.MaxStars {
		input.Stars = lesson.MaxStars
	}

	// Upsert: не больше одной записи на (user, level, lesson)
	var progress models.Progress
	err = pc.DB.Where("user_id = ? AND level_id = ? AND lesson_id = ?",
		userID, input.LevelID, input.LessonID).First(&progress).Error

	starsDelta := 0
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.Progress{
			UserID:    userID,
			LevelID:   input.LevelID,
			LessonID:  input.LessonID,
			Completed: input.Completed,
			Stars:     input.Stars,
			Accuracy:  input.Accuracy,
			TimeSpent: input.TimeSpent,
		}
		starsDelta = input.Stars
		if err := pc.DB.Create(&progress).Error; err != nil {
			return utils.InternalServerError(c, "Could not save progress")
		}
	} else if err != nil {
		return utils.InternalServerError(c, "Could not query progress")
	} else {
		// Пересдача: звёзды только растут, завершённость не откатывается
		if input.Stars > progress.Stars {
			starsDelta = input.Stars - progress.Stars
			progress.Stars = input.Stars
		}
		if input.Completed {
			progress.Completed = true
		}
		if input.Accuracy > 0 {
			progress.Accuracy = input.Accuracy
		}
		progress.TimeSpent += input.TimeSpent
		if err := pc.DB.Save(&progress).Error; err != nil {
			return utils.InternalServerError(c, "Could not save progress")
		}
	}

	if starsDelta > 0 {
		pc.DB.Model(&models.User{}).Where("id = ?", userID).
			Update("total_stars", gorm.Expr("total_stars + ?", starsDelta))
	}

	pc.Dashboard.InvalidateUser(userID)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"progress":    progress,
		"stars_delta": starsDelta,
	})
}
