package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"soroban/backend/config"
	"soroban/backend/models"
	"soroban/backend/services"
	"soroban/backend/utils"
)

// TrainingController принимает результаты тренировок и арен —
// журналы, которые дашборд потом только агрегирует.
type TrainingController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Dashboard *services.DashboardService
}

func NewTrainingController(db *gorm.DB, cfg *config.Config, dashboard *services.DashboardService) *TrainingController {
	return &TrainingController{DB: db, Cfg: cfg, Dashboard: dashboard}
}

// SubmitExercise godoc
// @Summary Record a practice attempt
// @Tags training
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /exercises [post]
func (tc *TrainingController) SubmitExercise(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type ExerciseInput struct {
		Type       string  `json:"type"`
		Difficulty string  `json:"difficulty"`
		Correct    bool    `json:"correct"`
		TimeTaken  float64 `json:"time_taken"`
	}

	var input ExerciseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Type == "" || input.Difficulty == "" {
		return utils.BadRequest(c, "type and difficulty are required")
	}

	result := models.ExerciseResult{
		UserID:     userID,
		Type:       input.Type,
		Difficulty: input.Difficulty,
		Correct:    input.Correct,
		TimeTaken:  input.TimeTaken,
	}
	if err := tc.DB.Create(&result).Error; err != nil {
		return utils.InternalServerError(c, "Could not save exercise result")
	}

	tc.Dashboard.InvalidateUser(userID)

	return utils.Success(c, fiber.StatusCreated, result)
}

// SubmitCompeteResult godoc
// @Summary Record an arena match outcome
// @Tags training
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /compete [post]
func (tc *TrainingController) SubmitCompeteResult(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type CompeteInput struct {
		ArenaID      uint    `json:"arena_id"`
		CorrectCount int     `json:"correct_count"`
		TotalTime    float64 `json:"total_time"`
		Stars        int     `json:"stars"`
	}

	var input CompeteInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.ArenaID == 0 {
		return utils.BadRequest(c, "arena_id is required")
	}

	result := models.CompeteResult{
		UserID:       userID,
		ArenaID:      input.ArenaID,
		CorrectCount: input.CorrectCount,
		TotalTime:    input.TotalTime,
		Stars:        input.Stars,
	}
	if err := tc.DB.Create(&result).Error; err != nil {
		return utils.InternalServerError(c, "Could not save compete result")
	}

	if input.Stars > 0 {
		tc.DB.Model(&models.User{}).Where("id = ?", userID).
			Update("total_stars", gorm.Expr("total_stars + ?", input.Stars))
	}

	tc.Dashboard.InvalidateUser(userID)

	return utils.Success(c, fiber.StatusCreated, result)
}
