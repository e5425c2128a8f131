package models

import "gorm.io/gorm"

// ExerciseResult — журнал попыток тренировки, только добавление.
type ExerciseResult struct {
	gorm.Model
	UserID     uint   `gorm:"index;not null"`
	Type       string `gorm:"not null"` // addition, subtraction, multiplication, division, mixed
	Difficulty string `gorm:"not null"` // easy, medium, hard
	Correct    bool
	TimeTaken  float64 // см. эвристику единиц измерения в services/stats_exercise.go
}
