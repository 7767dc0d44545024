package persistence

import (
	"context"
	"sync"

	"github.com/wfunc/teenpatti-player/models"
)

// Memory 内存实现，进程退出即丢失
type Memory struct {
	turns map[string][]models.TurnRecord
	games []models.GameRecord
	mutex sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{turns: make(map[string][]models.TurnRecord)}
}

func (m *Memory) SaveTurnRecord(_ context.Context, rec models.TurnRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.turns[rec.PlayerID] = append(m.turns[rec.PlayerID], rec)
	return nil
}

func (m *Memory) SaveGameRecord(_ context.Context, rec models.GameRecord) error {
	rec.Players = append([]models.PlayerSummary(nil), rec.Players...)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.games = append(m.games, rec)
	return nil
}

func (m *Memory) ListTurnRecords(_ context.Context, playerID string, limit int) ([]models.TurnRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	records := m.turns[playerID]
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}
	result := make([]models.TurnRecord, 0, limit)
	for i := len(records) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, records[i])
	}
	return result, nil
}

// GameRecords returns every finished round in order.
func (m *Memory) GameRecords() []models.GameRecord {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]models.GameRecord(nil), m.games...)
}

func (m *Memory) Close() error {
	return nil
}
