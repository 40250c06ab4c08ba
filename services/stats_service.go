// services/stats_service.go
package services

import (
	"context"
	"time"

	"github.com/wfunc/fishduel/models"
	"github.com/wfunc/fishduel/persistence"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// RegistryStatter 房间注册表统计
type RegistryStatter interface {
	Stats() models.RegistryStats
}

// ConnectionCounter 在线连接数
type ConnectionCounter interface {
	Count() int
}

// ServerStats 服务器实时统计
type ServerStats struct {
	models.RegistryStats
	Connections   int     `json:"connections"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

type StatsService struct {
	rooms     RegistryStatter
	conns     ConnectionCounter
	db        persistence.Database
	startTime time.Time
}

func NewStatsService(rooms RegistryStatter, conns ConnectionCounter, db persistence.Database) *StatsService {
	return &StatsService{
		rooms:     rooms,
		conns:     conns,
		db:        db,
		startTime: time.Now(),
	}
}

// Stats 获取实时统计
func (s *StatsService) Stats() ServerStats {
	return ServerStats{
		RegistryStats: s.rooms.Stats(),
		Connections:   s.conns.Count(),
		UptimeSeconds: time.Since(s.startTime).Seconds(),
	}
}

// Leaderboard 按总分获取排行榜. limit <= 0 uses the default; larger values
// are capped at MaxLeaderboardLimit.
func (s *StatsService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}
	entries, err := s.db.TopCatchers(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return entries, nil
}
