// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq" // PostgreSQL 驱动

	"github.com/wfunc/fishduel/models"
)

// PostgreSQL 数据库实现 (database/sql + lib/pq)
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(dsn string) (*PostgreSQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS journal_rooms (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(6) NOT NULL,
            event VARCHAR(16) NOT NULL,
            players JSONB NOT NULL,
            occurred_at TIMESTAMPTZ NOT NULL
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS journal_catches (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(6) NOT NULL,
            player_id VARCHAR(64) NOT NULL,
            username VARCHAR(64) NOT NULL,
            fish_type VARCHAR(16) NOT NULL,
            points INT NOT NULL,
            score_after INT NOT NULL,
            fishing_since TIMESTAMPTZ NOT NULL,
            caught_at TIMESTAMPTZ NOT NULL
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE INDEX IF NOT EXISTS idx_journal_rooms_room_code ON journal_rooms(room_code);
        CREATE INDEX IF NOT EXISTS idx_journal_catches_username ON journal_catches(username);
    `)
	return err
}

func (p *PostgreSQL) SaveRoomRecord(ctx context.Context, rec models.RoomRecord) error {
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO journal_rooms (room_code, event, players, occurred_at) VALUES ($1, $2, $3, $4)`,
		rec.RoomCode, string(rec.Event), players, rec.OccurredAt)
	return err
}

func (p *PostgreSQL) SaveCatchRecord(ctx context.Context, rec models.CatchRecord) error {
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO journal_catches
            (room_code, player_id, username, fish_type, points, score_after, fishing_since, caught_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.RoomCode, rec.PlayerID, rec.Username, string(rec.FishType),
		rec.Points, rec.ScoreAfter, rec.FishingSince, rec.CaughtAt)
	return err
}

func (p *PostgreSQL) TopCatchers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	rows, err := p.db.QueryContext(ctx, `
        SELECT username, COUNT(*), SUM(points)
        FROM journal_catches
        GROUP BY username
        ORDER BY SUM(points) DESC, username ASC
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Catches, &e.TotalPoints); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
