package services

import (
	"context"
	"time"

	"soroban/backend/models"
)

const activityDays = 7

// activityChart строит график активности за последние 7 дней из трёх
// потоков событий. Каждый поток группируется в map дата→счётчик за один
// проход, дальше дни собираются поиском по map, а не фильтрацией на день.
func (s *DashboardService) activityChart(ctx context.Context, userID uint) ([]ActivityDay, error) {
	now := s.now()
	windowStart := truncateToDay(now).AddDate(0, 0, -(activityDays - 1))
	db := s.DB.WithContext(ctx)

	lessonsByDay := make(map[string]int)
	var progressRows []models.Progress
	if err := db.
		Where("user_id = ? AND completed = ? AND updated_at >= ?", userID, true, windowStart).
		Find(&progressRows).Error; err != nil {
		return nil, err
	}
	for i := range progressRows {
		lessonsByDay[progressRows[i].UpdatedAt.Format("2006-01-02")]++
	}

	exercisesByDay := make(map[string]int)
	var exerciseRows []models.ExerciseResult
	if err := db.
		Where("user_id = ? AND correct = ? AND created_at >= ?", userID, true, windowStart).
		Find(&exerciseRows).Error; err != nil {
		return nil, err
	}
	for i := range exerciseRows {
		exercisesByDay[exerciseRows[i].CreatedAt.Format("2006-01-02")]++
	}

	competeByDay := make(map[string]int)
	var competeRows []models.CompeteResult
	if err := db.
		Where("user_id = ? AND created_at >= ?", userID, windowStart).
		Find(&competeRows).Error; err != nil {
		return nil, err
	}
	for i := range competeRows {
		competeByDay[competeRows[i].CreatedAt.Format("2006-01-02")]++
	}

	chart := make([]ActivityDay, 0, activityDays)
	for i := 0; i < activityDays; i++ {
		date := windowStart.AddDate(0, 0, i).Format("2006-01-02")
		chart = append(chart, ActivityDay{
			Date:      date,
			Lessons:   lessonsByDay[date],
			Exercises: exercisesByDay[date],
			Compete:   competeByDay[date],
		})
	}

	return chart, nil
}

// emptyActivityChart — значение по умолчанию, когда выборка не уложилась
// в таймаут: семь нулевых дней, а не пустой список.
func (s *DashboardService) emptyActivityChart(now time.Time) []ActivityDay {
	windowStart := truncateToDay(now).AddDate(0, 0, -(activityDays - 1))
	chart := make([]ActivityDay, 0, activityDays)
	for i := 0; i < activityDays; i++ {
		chart = append(chart, ActivityDay{Date: windowStart.AddDate(0, 0, i).Format("2006-01-02")})
	}
	return chart
}
