// persistence/interface.go
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/fishduel/models"
)

// Database 比赛记录存储接口
//
// The journal is write-mostly: live room state is never loaded back from it.
type Database interface {
	SaveRoomRecord(ctx context.Context, rec models.RoomRecord) error
	SaveCatchRecord(ctx context.Context, rec models.CatchRecord) error
	TopCatchers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	Close() error
}

// 错误定义
var (
	ErrInvalidLimit = errors.New("limit must be positive")
	ErrJournalFull  = errors.New("journal queue full")
)

// Open 根据驱动名创建数据库连接: "gorm" 或 "sql"
func Open(driver, dsn string) (Database, error) {
	switch driver {
	case "gorm":
		return NewGormPostgreSQL(dsn)
	case "sql":
		return NewPostgreSQL(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}
