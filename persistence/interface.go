// persistence/interface.go
package persistence

import (
	"context"
	"fmt"

	"github.com/wfunc/teenpatti-player/config"
	"github.com/wfunc/teenpatti-player/models"
)

// Database 回合与对局审计日志。只追加写入，不用于重启后恢复玩家状态
type Database interface {
	SaveTurnRecord(ctx context.Context, rec models.TurnRecord) error
	SaveGameRecord(ctx context.Context, rec models.GameRecord) error
	// ListTurnRecords returns the newest records first.
	ListTurnRecords(ctx context.Context, playerID string, limit int) ([]models.TurnRecord, error)
	Close() error
}

// Open 根据配置选择实现
func Open(cfg config.DatabaseConfig) (Database, error) {
	pg := cfg.Postgres
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "gorm":
		return NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "postgres":
		return NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
