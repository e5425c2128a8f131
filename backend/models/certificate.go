package models

import (
	"time"

	"gorm.io/gorm"
)

// Certificate фиксирует уже выданный сертификат.
// Право на получение не хранится, а вычисляется на лету (services/stats_certificates.go).
type Certificate struct {
	gorm.Model
	UserID    uint   `gorm:"not null;uniqueIndex:idx_user_cert,priority:1"`
	CertType  string `gorm:"not null;uniqueIndex:idx_user_cert,priority:2"`
	AwardedAt time.Time
}
