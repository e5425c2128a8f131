package utils

import (
	"fmt"
	"soroban/backend/config"
	"soroban/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB открывает соединение с Postgres и выполняет миграции.
// Пул соединений ограничен: хостинг даёт мало слотов, остальное
// разруливает фазовый оркестратор дашборда.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(8)
	sqlDB.SetMaxIdleConns(4)

	if err := MigrateModels(db); err != nil {
		return nil, err
	}

	return db, nil
}

// MigrateModels выполняет автомиграцию всех моделей.
// Вынесено отдельно, чтобы тесты могли мигрировать in-memory базу.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Level{},
		&models.Lesson{},
		&models.Progress{},
		&models.ExerciseResult{},
		&models.CompeteResult{},
		&models.Quest{},
		&models.UserQuest{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Certificate{},
	)
}
