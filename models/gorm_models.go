// models/gorm_models.go
package models

import (
	"time"
)

// GormTurnRecord 回合记录表
type GormTurnRecord struct {
	ID           string `gorm:"primaryKey;size:36"`
	PlayerID     string `gorm:"index;not null"`
	PotSize      int64
	CurrentBet   int64
	Action       string `gorm:"size:16;not null"`
	Amount       int64
	BalanceAfter int64
	Reason       string
	CreatedAt    time.Time `gorm:"index"`
}

func (GormTurnRecord) TableName() string { return "turn_records" }

// GormGameRecord 对局记录表
type GormGameRecord struct {
	ID      string          `gorm:"primaryKey;size:36"`
	Players []PlayerSummary `gorm:"serializer:json;type:jsonb"`
	EndedAt time.Time       `gorm:"index"`
}

func (GormGameRecord) TableName() string { return "game_records" }

func NewGormTurnRecord(r TurnRecord) GormTurnRecord {
	return GormTurnRecord{
		ID:           r.ID,
		PlayerID:     r.PlayerID,
		PotSize:      r.PotSize,
		CurrentBet:   r.CurrentBet,
		Action:       string(r.Action),
		Amount:       r.Amount,
		BalanceAfter: r.BalanceAfter,
		Reason:       r.Reason,
		CreatedAt:    r.CreatedAt,
	}
}

func (g GormTurnRecord) TurnRecord() TurnRecord {
	return TurnRecord{
		ID:           g.ID,
		PlayerID:     g.PlayerID,
		PotSize:      g.PotSize,
		CurrentBet:   g.CurrentBet,
		Action:       Action(g.Action),
		Amount:       g.Amount,
		BalanceAfter: g.BalanceAfter,
		Reason:       g.Reason,
		CreatedAt:    g.CreatedAt,
	}
}

func NewGormGameRecord(r GameRecord) GormGameRecord {
	return GormGameRecord{ID: r.ID, Players: r.Players, EndedAt: r.EndedAt}
}
