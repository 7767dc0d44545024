// players/store.go
package players

import (
	"errors"
	"sort"
	"sync"

	"github.com/coder/quartz"
	"github.com/wfunc/teenpatti-player/deck"
	"github.com/wfunc/teenpatti-player/models"
)

var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrNegativeBalance = errors.New("balance would become negative")
)

// entry 单个玩家记录及其独占锁，同一玩家的修改在此串行化
type entry struct {
	mu     sync.Mutex
	record models.PlayerRecord
}

// Store 玩家状态存储，进程内唯一的可变共享资源
type Store struct {
	players map[string]*entry
	mutex   sync.RWMutex

	src      deck.Source
	srcMutex sync.Mutex
	clock    quartz.Clock
}

func NewStore(src deck.Source, clock quartz.Clock) *Store {
	return &Store{
		players: make(map[string]*entry),
		src:     src,
		clock:   clock,
	}
}

// NewRecord builds a fully initialised record with a freshly drawn hand.
// The record is not stored until Put is called.
func (s *Store) NewRecord(id string, balance int64) models.PlayerRecord {
	return models.PlayerRecord{
		ID:         id,
		Balance:    balance,
		Hand:       s.drawHand(),
		CurrentBet: 0,
		IsActive:   true,
		JoinedAt:   s.clock.Now(),
	}
}

func (s *Store) drawHand() []string {
	s.srcMutex.Lock()
	defer s.srcMutex.Unlock()
	return deck.DrawHand(s.src)
}

// Register 创建或覆盖玩家记录
func (s *Store) Register(id string, balance int64) models.PlayerRecord {
	rec := s.NewRecord(id, balance)
	s.Put(rec)
	return rec.Clone()
}

// Put 存入记录，已存在则整体覆盖（重复加入不会累加手牌）
func (s *Store) Put(rec models.PlayerRecord) {
	rec = rec.Clone()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if e, exists := s.players[rec.ID]; exists {
		e.mu.Lock()
		e.record = rec
		e.mu.Unlock()
		return
	}
	s.players[rec.ID] = &entry{record: rec}
}

func (s *Store) lookup(id string) (*entry, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	e, exists := s.players[id]
	return e, exists
}

// Get 返回玩家记录的副本
func (s *Store) Get(id string) (models.PlayerRecord, error) {
	e, exists := s.lookup(id)
	if !exists {
		return models.PlayerRecord{}, ErrPlayerNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record.Clone(), nil
}

// Update runs fn against a copy of the record while holding that player's lock.
// The copy is committed only when fn returns nil and the balance stays non-negative,
// so a rejected mutation never leaves the record partially applied.
func (s *Store) Update(id string, fn func(rec *models.PlayerRecord) error) (models.PlayerRecord, error) {
	e, exists := s.lookup(id)
	if !exists {
		return models.PlayerRecord{}, ErrPlayerNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	working := e.record.Clone()
	if err := fn(&working); err != nil {
		return e.record.Clone(), err
	}
	if working.Balance < 0 {
		return e.record.Clone(), ErrNegativeBalance
	}
	working.ID = e.record.ID
	e.record = working
	return working.Clone(), nil
}

func (s *Store) entries() []*entry {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	list := make([]*entry, 0, len(s.players))
	for _, e := range s.players {
		list = append(list, e)
	}
	return list
}

// ResetAll 将所有玩家重置为初始余额、新手牌、下注清零并重新激活
func (s *Store) ResetAll(balance int64) {
	for _, e := range s.entries() {
		hand := s.drawHand()
		e.mu.Lock()
		e.record.Balance = balance
		e.record.Hand = hand
		e.record.CurrentBet = 0
		e.record.IsActive = true
		e.mu.Unlock()
	}
}

// Snapshot 返回所有玩家记录副本，按ID排序
func (s *Store) Snapshot() []models.PlayerRecord {
	list := s.entries()
	records := make([]models.PlayerRecord, 0, len(list))
	for _, e := range list {
		e.mu.Lock()
		records = append(records, e.record.Clone())
		e.mu.Unlock()
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.players)
}
