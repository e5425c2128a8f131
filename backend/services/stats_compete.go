package services

import (
	"context"

	"soroban/backend/models"
)

// Ранжирование топ-3 пересчитывается не больше чем по 10 последним аренам,
// иначе стоимость запросов растёт вместе с историей игрока.
const maxRankedArenas = 10

// competeStats — личные рекорды и количество попаданий в топ-3.
func (s *DashboardService) competeStats(ctx context.Context, userID uint) (CompeteStats, error) {
	stats := CompeteStats{}
	db := s.DB.WithContext(ctx)

	if err := db.Model(&models.CompeteResult{}).
		Where("user_id = ?", userID).
		Distinct("arena_id").
		Count(&stats.TotalArenas).Error; err != nil {
		return stats, err
	}
	if stats.TotalArenas == 0 {
		return stats, nil
	}

	if err := db.Model(&models.CompeteResult{}).
		Select("COALESCE(SUM(stars), 0)").
		Where("user_id = ?", userID).
		Scan(&stats.TotalStars).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.CompeteResult{}).
		Select("COALESCE(MAX(correct_count), 0)").
		Where("user_id = ?", userID).
		Scan(&stats.BestCorrect).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.CompeteResult{}).
		Select("COALESCE(MIN(total_time), 0)").
		Where("user_id = ?", userID).
		Scan(&stats.BestTime).Error; err != nil {
		return stats, err
	}

	// Последние сыгранные арены
	var arenaIDs []uint
	if err := db.Model(&models.CompeteResult{}).
		Where("user_id = ?", userID).
		Group("arena_id").
		Order("MAX(created_at) DESC").
		Limit(maxRankedArenas).
		Pluck("arena_id", &arenaIDs).Error; err != nil {
		return stats, err
	}

	// Внутри арены место определяется по (correct_count DESC, total_time ASC);
	// при полном равенстве решает порядок строк.
	for _, arenaID := range arenaIDs {
		var results []models.CompeteResult
		if err := db.
			Where("arena_id = ?", arenaID).
			Order("correct_count DESC, total_time ASC").
			Find(&results).Error; err != nil {
			return stats, err
		}

		seen := make(map[uint]bool)
		rank := 0
		for i := range results {
			if seen[results[i].UserID] {
				continue
			}
			seen[results[i].UserID] = true
			rank++
			if results[i].UserID == userID {
				if rank <= 3 {
					stats.Top3Finishes++
				}
				break
			}
		}
	}

	return stats, nil
}
