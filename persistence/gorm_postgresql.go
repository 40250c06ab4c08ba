// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/fishduel/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(dsn string) (*GormPostgreSQL, error) {
	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormRoomRecord{},
		&models.GormCatchRecord{},
	)
}

func (p *GormPostgreSQL) SaveRoomRecord(ctx context.Context, rec models.RoomRecord) error {
	return p.db.WithContext(ctx).Create(&models.GormRoomRecord{
		RoomCode:   rec.RoomCode,
		Event:      string(rec.Event),
		Players:    strings.Join(rec.Players, ","),
		OccurredAt: rec.OccurredAt,
	}).Error
}

func (p *GormPostgreSQL) SaveCatchRecord(ctx context.Context, rec models.CatchRecord) error {
	return p.db.WithContext(ctx).Create(&models.GormCatchRecord{
		RoomCode:     rec.RoomCode,
		PlayerID:     rec.PlayerID,
		Username:     rec.Username,
		FishType:     string(rec.FishType),
		Points:       rec.Points,
		ScoreAfter:   rec.ScoreAfter,
		FishingSince: rec.FishingSince,
		CaughtAt:     rec.CaughtAt,
	}).Error
}

// TopCatchers 按总分排行
func (p *GormPostgreSQL) TopCatchers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	var entries []models.LeaderboardEntry
	err := p.db.WithContext(ctx).
		Model(&models.GormCatchRecord{}).
		Select("username, COUNT(*) AS catches, SUM(points) AS total_points").
		Group("username").
		Order("total_points DESC, username ASC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
