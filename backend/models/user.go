package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username         string `gorm:"unique;not null"`
	Email            string `gorm:"unique;not null"`
	PasswordHash     string `gorm:"not null"`
	Role             string `gorm:"default:student"` // student, admin
	SubscriptionTier string `gorm:"default:free"`    // free, premium
	TotalStars       int    `gorm:"default:0"`
	Diamonds         int    `gorm:"default:0"`
	LoginStreak      int    `gorm:"default:0"`
	LastLoginAt      *time.Time
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}
