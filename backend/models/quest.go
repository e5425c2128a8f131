package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quest — шаблон квеста. Условие хранится как JSON:
// {"type": "complete_lessons", "count": 3, "metric": "lessons_today"}
type Quest struct {
	gorm.Model
	Type           string `gorm:"not null"` // daily, weekly, special
	Title          string `gorm:"not null"`
	TargetCount    int    `gorm:"not null"`
	RewardStars    int    `gorm:"default:0"`
	RewardDiamonds int    `gorm:"default:0"`
	Active         bool   `gorm:"default:true"`
	ExpiresAt      *time.Time
	Requirement    datatypes.JSON
}

// UserQuest — прогресс пользователя по квесту.
// После установки ClaimedAt запись заморожена, прогресс больше не пересчитывается.
type UserQuest struct {
	gorm.Model
	UserID      uint `gorm:"not null;uniqueIndex:idx_user_quest,priority:1"`
	QuestID     uint `gorm:"not null;uniqueIndex:idx_user_quest,priority:2"`
	Progress    int  `gorm:"default:0"`
	CompletedAt *time.Time
	ClaimedAt   *time.Time
}
