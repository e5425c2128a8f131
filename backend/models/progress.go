package models

import "gorm.io/gorm"

// Progress — одна запись на (user, level, lesson), upsert-семантика.
type Progress struct {
	gorm.Model
	UserID    uint `gorm:"not null;uniqueIndex:idx_user_level_lesson,priority:1"`
	LevelID   uint `gorm:"not null;uniqueIndex:idx_user_level_lesson,priority:2"`
	LessonID  uint `gorm:"not null;uniqueIndex:idx_user_level_lesson,priority:3"`
	Completed bool `gorm:"default:false"`
	Stars     int  `gorm:"default:0"`
	Accuracy  float64
	TimeSpent int // секунды
}
