package models

import "gorm.io/gorm"

// Уровни и уроки — статический каталог, меняется редко.
// Дашборд читает его через долгоживущий кэш, а не напрямую из базы.

type Level struct {
	gorm.Model
	Number   int    `gorm:"unique;not null"`
	Title    string `gorm:"not null"`
	MinStars int    `gorm:"default:0"`
	Lessons  []Lesson
}

type Lesson struct {
	gorm.Model
	LevelID  uint `gorm:"index;not null"`
	Number   int  `gorm:"not null"`
	Title    string
	MaxStars int `gorm:"default:3"`
}
