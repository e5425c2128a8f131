package services

import (
	"context"

	"gorm.io/gorm"

	"soroban/backend/models"
)

const curriculumCacheKey = "curriculum"

// loadCurriculum возвращает полный каталог уровней с уроками.
// Каталог почти не меняется, поэтому живёт в отдельном кэше с длинным TTL
// и не перечитывается из базы на каждую сборку дашборда.
func (s *DashboardService) loadCurriculum(ctx context.Context) ([]models.Level, error) {
	if cached, ok := s.Static.Get(curriculumCacheKey); ok {
		return cached.([]models.Level), nil
	}

	var levels []models.Level
	if err := s.DB.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("number") }).
		Order("number").
		Find(&levels).Error; err != nil {
		return nil, err
	}

	s.Static.Set(curriculumCacheKey, levels, s.Cfg.StaticCacheTTL)
	return levels, nil
}

// progressStats сводит записи прогресса пользователя против каталога.
// Возвращает также сырые записи — от них зависит шаг "следующий урок".
func (s *DashboardService) progressStats(ctx context.Context, userID uint) (ProgressStats, []models.Progress, error) {
	stats := ProgressStats{Levels: []LevelProgress{}}

	levels, err := s.loadCurriculum(ctx)
	if err != nil {
		return stats, nil, err
	}

	var rows []models.Progress
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rows).Error; err != nil {
		return stats, nil, err
	}

	// Группируем записи по уровням за один проход
	type levelAgg struct {
		completed   map[uint]bool
		stars       int
		accuracySum float64
	}
	byLevel := make(map[uint]*levelAgg)
	for i := range rows {
		row := &rows[i]
		agg := byLevel[row.LevelID]
		if agg == nil {
			agg = &levelAgg{completed: make(map[uint]bool)}
			byLevel[row.LevelID] = agg
		}
		if row.Completed {
			if !agg.completed[row.LessonID] {
				agg.completed[row.LessonID] = true
				agg.accuracySum += row.Accuracy
			}
			agg.stars += row.Stars
		}
	}

	for i := range levels {
		level := &levels[i]
		total := len(level.Lessons)
		maxStars := 0
		for _, lesson := range level.Lessons {
			maxStars += lesson.MaxStars
		}

		lp := LevelProgress{
			LevelID:     level.ID,
			LevelNumber: level.Number,
			Title:       level.Title,
			Total:       total,
			MaxStars:    maxStars,
		}

		if agg := byLevel[level.ID]; agg != nil {
			completed := len(agg.completed)
			// Защитный clamp от дублей и осиротевших записей
			if completed > total {
				completed = total
			}
			lp.Completed = completed
			lp.Stars = agg.stars
			if total > 0 {
				lp.Percent = float64(completed) / float64(total) * 100
			}
			// Средняя точность только по завершённым урокам, 0 если их нет
			if len(agg.completed) > 0 {
				lp.AvgAccuracy = agg.accuracySum / float64(len(agg.completed))
			}
		}

		stats.CompletedLessons += lp.Completed
		stats.TotalLessons += total
		stats.TotalStars += lp.Stars
		stats.Levels = append(stats.Levels, lp)
	}

	return stats, rows, nil
}

// nextLessonFromProgress находит первый незавершённый урок в порядке каталога.
// Возвращает nil, когда весь каталог пройден.
func nextLessonFromProgress(levels []models.Level, rows []models.Progress) *NextLesson {
	completed := make(map[uint]bool, len(rows))
	for i := range rows {
		if rows[i].Completed {
			completed[rows[i].LessonID] = true
		}
	}

	for i := range levels {
		level := &levels[i]
		for j := range level.Lessons {
			lesson := &level.Lessons[j]
			if !completed[lesson.ID] {
				return &NextLesson{
					LevelID:      level.ID,
					LessonID:     lesson.ID,
					LevelNumber:  level.Number,
					LessonNumber: lesson.Number,
					Title:        lesson.Title,
				}
			}
		}
	}
	return nil
}

// completedLevelCount считает уровни, закрытые целиком (для квестов complete_levels).
func completedLevelCount(stats ProgressStats) int {
	count := 0
	for _, lp := range stats.Levels {
		if lp.Total > 0 && lp.Completed >= lp.Total {
			count++
		}
	}
	return count
}
