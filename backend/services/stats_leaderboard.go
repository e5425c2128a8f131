package services

import (
	"context"

	"soroban/backend/models"
)

// LeaderboardRank — позиция пользователя среди всех учеников по звёздам.
// Линейный проход по всей таблице: известный потолок масштабируемости,
// приемлемый при текущем числе пользователей. При росте базы место должно
// считаться по отдельному ранговому индексу, а не полным сканом на запрос.
func (s *DashboardService) LeaderboardRank(ctx context.Context, userID uint) (LeaderboardRank, error) {
	rank := LeaderboardRank{}

	type row struct {
		ID         uint
		TotalStars int
	}
	var rows []row
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Select("id, total_stars").
		Where("role = ?", "student").
		Order("total_stars DESC, id ASC").
		Scan(&rows).Error; err != nil {
		return rank, err
	}

	rank.TotalPlayers = len(rows)
	for i := range rows {
		if rows[i].ID == userID {
			position := i + 1
			rank.Rank = &position
			if rank.TotalPlayers > 0 {
				rank.Percentile = float64(rank.TotalPlayers-position) / float64(rank.TotalPlayers) * 100
			}
			break
		}
	}

	return rank, nil
}
