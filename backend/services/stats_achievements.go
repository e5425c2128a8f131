package services

import (
	"context"

	"soroban/backend/models"
)

// achievementStats — счётчики ачивок и последние открытия.
func (s *DashboardService) achievementStats(ctx context.Context, userID uint) (AchievementStats, error) {
	stats := AchievementStats{Recent: []AchievementView{}}
	db := s.DB.WithContext(ctx)

	if err := db.Model(&models.Achievement{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Count(&stats.Unlocked).Error; err != nil {
		return stats, err
	}

	var recent []models.UserAchievement
	if err := db.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Limit(5).
		Find(&recent).Error; err != nil {
		return stats, err
	}

	for i := range recent {
		stats.Recent = append(stats.Recent, AchievementView{
			AchievementID: recent[i].AchievementID,
			Name:          recent[i].Achievement.Name,
			Category:      recent[i].Achievement.Category,
			UnlockedAt:    recent[i].UnlockedAt,
		})
	}

	return stats, nil
}
