// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wfunc/teenpatti-player/models"

	_ "github.com/lib/pq" // PostgreSQL 驱动
)

// PostgreSQL 数据库实现（database/sql）
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

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

// initTables 初始化表结构，与 GORM 实现共用表名
func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS turn_records (
            id VARCHAR(36) PRIMARY KEY,
            player_id TEXT NOT NULL,
            pot_size BIGINT NOT NULL,
            current_bet BIGINT NOT NULL,
            action VARCHAR(16) NOT NULL,
            amount BIGINT NOT NULL,
            balance_after BIGINT NOT NULL,
            reason TEXT,
            created_at TIMESTAMPTZ NOT NULL
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS game_records (
            id VARCHAR(36) PRIMARY KEY,
            players JSONB NOT NULL,
            ended_at TIMESTAMPTZ NOT NULL
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE INDEX IF NOT EXISTS idx_turn_records_player_id ON turn_records(player_id);
        CREATE INDEX IF NOT EXISTS idx_turn_records_created_at ON turn_records(created_at);
        CREATE INDEX IF NOT EXISTS idx_game_records_ended_at ON game_records(ended_at);
    `)
	return err
}

func (p *PostgreSQL) SaveTurnRecord(ctx context.Context, rec models.TurnRecord) error {
	query := `
        INSERT INTO turn_records (id, player_id, pot_size, current_bet, action, amount, balance_after, reason, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := p.db.ExecContext(ctx, query,
		rec.ID, rec.PlayerID, rec.PotSize, rec.CurrentBet, string(rec.Action),
		rec.Amount, rec.BalanceAfter, rec.Reason, rec.CreatedAt)
	return err
}

func (p *PostgreSQL) SaveGameRecord(ctx context.Context, rec models.GameRecord) error {
	playersJSON, err := json.Marshal(rec.Players)
	if err != nil {
		return err
	}

	query := `INSERT INTO game_records (id, players, ended_at) VALUES ($1, $2, $3)`
	_, err = p.db.ExecContext(ctx, query, rec.ID, playersJSON, rec.EndedAt)
	return err
}

func (p *PostgreSQL) ListTurnRecords(ctx context.Context, playerID string, limit int) ([]models.TurnRecord, error) {
	query := `
        SELECT id, player_id, pot_size, current_bet, action, amount, balance_after, COALESCE(reason, ''), created_at
        FROM turn_records WHERE player_id = $1 ORDER BY created_at DESC
    `
	args := []interface{}{playerID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.TurnRecord
	for rows.Next() {
		var rec models.TurnRecord
		var action string
		if err := rows.Scan(&rec.ID, &rec.PlayerID, &rec.PotSize, &rec.CurrentBet, &action,
			&rec.Amount, &rec.BalanceAfter, &rec.Reason, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Action = models.Action(action)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
