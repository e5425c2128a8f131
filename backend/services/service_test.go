package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"soroban/backend/cache"
	"soroban/backend/config"
	"soroban/backend/models"
	"soroban/backend/utils"
)

func testCtx() context.Context {
	return context.Background()
}

// newTestService поднимает сервис над in-memory SQLite с изолированными кэшами.
func newTestService(t *testing.T) *DashboardService {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, utils.MigrateModels(db))

	cfg := &config.Config{
		DashboardCacheTTL:    90 * time.Second,
		StaleWindow:          10 * time.Minute,
		StaticCacheTTL:       30 * time.Minute,
		OptionalFetchTimeout: 2 * time.Second,
	}

	return NewDashboardService(db, cfg, cache.New(), cache.New(), log.New(io.Discard, "", 0))
}

func seedUser(t *testing.T, svc *DashboardService, name string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     name,
		Email:        name + "@test.local",
		PasswordHash: "irrelevant",
		Role:         "student",
	}
	require.NoError(t, svc.DB.Create(user).Error)
	return user
}

func seedQuest(t *testing.T, svc *DashboardService, questType, requirement string, target int) *models.Quest {
	t.Helper()

	quest := &models.Quest{
		Type:        questType,
		Title:       questType + " quest",
		TargetCount: target,
		Active:      true,
		Requirement: datatypes.JSON([]byte(requirement)),
	}
	require.NoError(t, svc.DB.Create(quest).Error)
	return quest
}

// seedCatalog создаёт два уровня по два урока.
func seedCatalog(t *testing.T, svc *DashboardService) []models.Level {
	t.Helper()

	levels := []models.Level{
		{Number: 1, Title: "Basics", Lessons: []models.Lesson{
			{Number: 1, Title: "Counting beads", MaxStars: 3},
			{Number: 2, Title: "Simple addition", MaxStars: 3},
		}},
		{Number: 2, Title: "Friends of five", Lessons: []models.Lesson{
			{Number: 1, Title: "Complements", MaxStars: 3},
			{Number: 2, Title: "Mixed drills", MaxStars: 3},
		}},
	}
	for i := range levels {
		require.NoError(t, svc.DB.Create(&levels[i]).Error)
	}
	return levels
}
