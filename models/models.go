// models/models.go
package models

import (
	"time"
)

// Action 玩家在一个回合中的动作
type Action string

const (
	ActionBet  Action = "bet"
	ActionFold Action = "fold"
	ActionShow Action = "show"
)

// PlayerRecord 玩家状态记录
type PlayerRecord struct {
	ID         string    `json:"name"`
	Balance    int64     `json:"balance"`
	Hand       []string  `json:"hand"`
	CurrentBet int64     `json:"current_bet"`
	IsActive   bool      `json:"is_active"`
	JoinedAt   time.Time `json:"joined_at"`
}

// Clone returns a deep copy so callers never share the hand slice with the store.
func (p PlayerRecord) Clone() PlayerRecord {
	c := p
	c.Hand = append([]string(nil), p.Hand...)
	return c
}

// Summary 玩家公开信息（不含手牌）
func (p PlayerRecord) Summary() PlayerSummary {
	return PlayerSummary{
		Name:       p.ID,
		Balance:    p.Balance,
		CurrentBet: p.CurrentBet,
		IsActive:   p.IsActive,
	}
}

// PlayerSummary 用于游戏状态和对局记录
type PlayerSummary struct {
	Name       string `json:"name"`
	Balance    int64  `json:"balance"`
	CurrentBet int64  `json:"current_bet"`
	IsActive   bool   `json:"is_active"`
}

// TurnRecord 回合决策记录
type TurnRecord struct {
	ID           string    `json:"id"`
	PlayerID     string    `json:"player_id"`
	PotSize      int64     `json:"pot_size"`
	CurrentBet   int64     `json:"current_bet"`
	Action       Action    `json:"action"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// GameRecord 一局结束时的快照
type GameRecord struct {
	ID      string          `json:"id"`
	Players []PlayerSummary `json:"players"`
	EndedAt time.Time       `json:"ended_at"`
}
