package models

import (
	"time"

	"gorm.io/gorm"
)

type Achievement struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;not null"`
	Description string
	Category    string // speed, accuracy, streak, compete
	Icon        string
	RewardStars int `gorm:"default:0"`
}

// UserAchievement — открытие ачивки необратимо, запись никогда не удаляется.
type UserAchievement struct {
	gorm.Model
	UserID        uint `gorm:"not null;uniqueIndex:idx_user_achievement,priority:1"`
	AchievementID uint `gorm:"not null;uniqueIndex:idx_user_achievement,priority:2"`
	UnlockedAt    time.Time
	Achievement   Achievement
}
