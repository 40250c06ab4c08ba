// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormRoomRecord 房间生命周期记录
type GormRoomRecord struct {
	gorm.Model
	RoomCode   string    `gorm:"index;size:6;not null"`
	Event      string    `gorm:"size:16;not null"`
	Players    string    `gorm:"not null"` // comma separated usernames
	OccurredAt time.Time `gorm:"not null"`
}

func (GormRoomRecord) TableName() string { return "room_records" }

// GormCatchRecord 钓鱼记录
type GormCatchRecord struct {
	gorm.Model
	RoomCode     string    `gorm:"index;size:6;not null"`
	PlayerID     string    `gorm:"size:64;not null"`
	Username     string    `gorm:"index;not null"`
	FishType     string    `gorm:"size:16;not null"`
	Points       int       `gorm:"not null"`
	ScoreAfter   int       `gorm:"not null"`
	FishingSince time.Time `gorm:"not null"`
	CaughtAt     time.Time `gorm:"index;not null"`
}

func (GormCatchRecord) TableName() string { return "catch_records" }
