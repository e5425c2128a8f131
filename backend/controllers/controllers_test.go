package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"soroban/backend/cache"
	"soroban/backend/config"
	"soroban/backend/models"
	"soroban/backend/routes"
	"soroban/backend/services"
	"soroban/backend/utils"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
	svc *services.DashboardService
}

func setupEnv(t *testing.T, rateLimit int) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, utils.MigrateModels(db))

	cfg := &config.Config{
		JWTSecret:            "testsecret",
		DashboardCacheTTL:    90 * time.Second,
		StaleWindow:          10 * time.Minute,
		StaticCacheTTL:       30 * time.Minute,
		OptionalFetchTimeout: 2 * time.Second,
		RateLimitPerMinute:   rateLimit,
	}

	svc := services.NewDashboardService(db, cfg, cache.New(), cache.New(), log.New(io.Discard, "", 0))

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, svc)

	return &testEnv{app: app, db: db, cfg: cfg, svc: svc}
}

func (env *testEnv) register(t *testing.T, username string) (uint, string) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"username": username,
		"email":    username + "@test.local",
		"password": "secret123",
	})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	token := result["token"].(string)
	userID := uint(result["user"].(map[string]interface{})["id"].(float64))
	return userID, token
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupEnv(t, 100)
	_, token := env.register(t, "alice")
	assert.NotEmpty(t, token)

	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "secret123"})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1.0, result["user"].(map[string]interface{})["loginStreak"])
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := setupEnv(t, 100)
	env.register(t, "bob")

	body, _ := json.Marshal(map[string]string{"username": "bob", "password": "wrong"})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestDashboardRequiresAuth(t *testing.T) {
	env := setupEnv(t, 100)

	req := httptest.NewRequest("GET", "/api/dashboard/stats", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestDashboardReturnsSnapshot(t *testing.T) {
	env := setupEnv(t, 100)
	userID, token := env.register(t, "carol")

	req := httptest.NewRequest("GET", "/api/dashboard/stats", nil)
	req.Header.Set("Authorization", token)

	resp, err := env.app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, float64(userID), result["user"].(map[string]interface{})["id"])
	assert.NotNil(t, result["progress"])
	assert.NotNil(t, result["certificates"])
}

func TestDashboardResolvesUserByEmailFallback(t *testing.T) {
	env := setupEnv(t, 100)
	env.register(t, "dave")

	// Токен без user_id — как у только что зарегистрированного
	token, err := utils.GenerateJWTToken(0, "dave@test.local", env.cfg)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/dashboard/stats", nil)
	req.Header.Set("Authorization", token)

	resp, err := env.app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDashboardUnknownEmailIs404(t *testing.T) {
	env := setupEnv(t, 100)

	token, err := utils.GenerateJWTToken(0, "ghost@test.local", env.cfg)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/dashboard/stats", nil)
	req.Header.Set("Authorization", token)

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDashboardRateLimited(t *testing.T) {
	env := setupEnv(t, 2)
	_, token := env.register(t, "eager")

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/api/dashboard/stats", nil)
		req.Header.Set("Authorization", token)
		resp, err := env.app.Test(req, 5000)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	req := httptest.NewRequest("GET", "/api/dashboard/stats", nil)
	req.Header.Set("Authorization", token)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestProgressUpsert(t *testing.T) {
	env := setupEnv(t, 100)
	userID, token := env.register(t, "learner")

	level := models.Level{Number: 1, Title: "Basics", Lessons: []models.Lesson{
		{Number: 1, Title: "Counting", MaxStars: 3},
	}}
	require.NoError(t, env.db.Create(&level).Error)

	submit := func(stars int) map[string]interface{} {
		body, _ := json.Marshal(map[string]interface{}{
			"level_id":   level.ID,
			"lesson_id":  level.Lessons[0].ID,
			"completed":  true,
			"stars":      stars,
			"accuracy":   90,
			"time_spent": 60,
		})
		req := httptest.NewRequest("POST", "/api/progress", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", token)

		resp, err := env.app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		return result["data"].(map[string]interface{})
	}

	first := submit(2)
	assert.Equal(t, 2.0, first["stars_delta"])

	// Пересдача с лучшим результатом добавляет только разницу
	second := submit(3)
	assert.Equal(t, 1.0, second["stars_delta"])

	// Запись одна, upsert не плодит дубликаты
	var count int64
	env.db.Model(&models.Progress{}).Where("user_id = ?", userID).Count(&count)
	assert.Equal(t, int64(1), count)

	var user models.User
	require.NoError(t, env.db.First(&user, userID).Error)
	assert.Equal(t, 3, user.TotalStars)
}

func TestQuestClaimIsTerminal(t *testing.T) {
	env := setupEnv(t, 100)
	userID, token := env.register(t, "quester")

	quest := models.Quest{
		Type:        "daily",
		Title:       "Daily drills",
		TargetCount: 3,
		RewardStars: 10,
		Active:      true,
		Requirement: datatypes.JSON([]byte(`{"type": "complete_exercises", "count": 3, "metric": "exercises_today"}`)),
	}
	require.NoError(t, env.db.Create(&quest).Error)

	now := time.Now()
	require.NoError(t, env.db.Create(&models.UserQuest{
		UserID: userID, QuestID: quest.ID, Progress: 3, CompletedAt: &now,
	}).Error)

	claim := func() int {
		req := httptest.NewRequest("POST", fmt.Sprintf("/api/quests/%d/claim", quest.ID), nil)
		req.Header.Set("Authorization", token)
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, claim())

	var user models.User
	require.NoError(t, env.db.First(&user, userID).Error)
	assert.Equal(t, 10, user.TotalStars)

	// Повторная заявка отклоняется: состояние терминальное
	assert.Equal(t, fiber.StatusBadRequest, claim())
}

func TestSubmitExerciseAndCompete(t *testing.T) {
	env := setupEnv(t, 100)
	userID, token := env.register(t, "athlete")

	body, _ := json.Marshal(map[string]interface{}{
		"type": "addition", "difficulty": "easy", "correct": true, "time_taken": 4.2,
	})
	req := httptest.NewRequest("POST", "/api/exercises", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body, _ = json.Marshal(map[string]interface{}{
		"arena_id": 1, "correct_count": 8, "total_time": 42.5, "stars": 2,
	})
	req = httptest.NewRequest("POST", "/api/compete", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var user models.User
	require.NoError(t, env.db.First(&user, userID).Error)
	assert.Equal(t, 2, user.TotalStars)
}
