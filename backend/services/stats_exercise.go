package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"soroban/backend/models"
)

// exerciseStats собирает сводку по тренировкам агрегатами на стороне базы:
// сырые строки журнала не загружаются. Пять агрегатов уходят параллельно
// одной фиксированной пачкой.
func (s *DashboardService) exerciseStats(ctx context.Context, userID uint) (ExerciseStats, error) {
	stats := ExerciseStats{
		ByType:       map[string]int64{},
		ByDifficulty: map[string]int64{},
	}

	type groupRow struct {
		Key   string
		Count int64
	}

	var (
		total, correct int64
		avgTime        float64
		byType         []groupRow
		byDifficulty   []groupRow
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.DB.WithContext(gctx).Model(&models.ExerciseResult{}).
			Where("user_id = ?", userID).
			Count(&total).Error
	})
	g.Go(func() error {
		return s.DB.WithContext(gctx).Model(&models.ExerciseResult{}).
			Where("user_id = ? AND correct = ?", userID, true).
			Count(&correct).Error
	})
	g.Go(func() error {
		return s.DB.WithContext(gctx).Model(&models.ExerciseResult{}).
			Select("COALESCE(AVG(time_taken), 0)").
			Where("user_id = ?", userID).
			Scan(&avgTime).Error
	})
	g.Go(func() error {
		return s.DB.WithContext(gctx).Model(&models.ExerciseResult{}).
			Select("type as key, COUNT(*) as count").
			Where("user_id = ?", userID).
			Group("type").
			Scan(&byType).Error
	})
	g.Go(func() error {
		return s.DB.WithContext(gctx).Model(&models.ExerciseResult{}).
			Select("difficulty as key, COUNT(*) as count").
			Where("user_id = ?", userID).
			Group("difficulty").
			Scan(&byDifficulty).Error
	})

	if err := g.Wait(); err != nil {
		return stats, err
	}

	stats.Total = total
	stats.Correct = correct
	if total > 0 {
		stats.Accuracy = float64(correct) / float64(total) * 100
	}

	// TimeTaken исторически писался то в секундах, то в миллисекундах.
	// Эвристика: среднее больше 100 считаем миллисекундами. Единица в базе
	// не подтверждена владельцем данных, значение предварительное.
	if avgTime > 100 {
		avgTime = avgTime / 1000
	}
	stats.AvgTime = avgTime

	for _, row := range byType {
		stats.ByType[row.Key] = row.Count
	}
	for _, row := range byDifficulty {
		stats.ByDifficulty[row.Key] = row.Count
	}

	return stats, nil
}
