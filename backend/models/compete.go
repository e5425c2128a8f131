package models

import "gorm.io/gorm"

// CompeteResult — журнал результатов арен, только добавление.
type CompeteResult struct {
	gorm.Model
	UserID       uint `gorm:"index;not null"`
	ArenaID      uint `gorm:"index;not null"`
	CorrectCount int
	TotalTime    float64 // секунды
	Stars        int
}
