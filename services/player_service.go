// services/player_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/wfunc/teenpatti-player/logger"
	"github.com/wfunc/teenpatti-player/models"
	"github.com/wfunc/teenpatti-player/monitor"
	"github.com/wfunc/teenpatti-player/network"
	"github.com/wfunc/teenpatti-player/persistence"
	"github.com/wfunc/teenpatti-player/players"
	"github.com/wfunc/teenpatti-player/state"
	"github.com/wfunc/teenpatti-player/strategy"
)

// Dealer 发牌方服务中本服务用到的部分
type Dealer interface {
	Ping(ctx context.Context) error
	ShowPot(ctx context.Context) (int64, error)
	Join(ctx context.Context, name, hostURL string) error
}

// EventPublisher 事件推送
type EventPublisher interface {
	Publish(msgID uint16, event interface{})
}

type Options struct {
	InitialBalance int64
	// HostURL is the address the dealer uses to reach this agent.
	HostURL      string
	NotifyOnJoin bool
	Clock        quartz.Clock
}

type TurnResult struct {
	Action models.Action `json:"action"`
	Amount int64         `json:"amount"`
}

type JoinResult struct {
	Status string   `json:"status"`
	Player string   `json:"player"`
	Hand   []string `json:"hand"`
}

type BalanceResult struct {
	Status     string `json:"status"`
	NewBalance int64  `json:"new_balance"`
}

type GameStatus struct {
	IsActive    bool                   `json:"is_active"`
	Phase       string                 `json:"phase"`
	Pot         int64                  `json:"pot"`
	CurrentTurn string                 `json:"current_turn"`
	Players     []models.PlayerSummary `json:"players"`
}

type PlayerService struct {
	store   *players.Store
	dealer  Dealer
	db      persistence.Database
	events  EventPublisher
	monitor *monitor.Monitor
	round   *state.BaseStateMachine
	opts    Options

	lastTurn      string
	lastTurnMutex sync.RWMutex
}

func NewPlayerService(store *players.Store, dealer Dealer, db persistence.Database, events EventPublisher, mon *monitor.Monitor, opts Options) (*PlayerService, error) {
	if opts.InitialBalance < 0 {
		return nil, fmt.Errorf("%w: initial balance %d must not be negative", ErrValidation, opts.InitialBalance)
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	s := &PlayerService{
		store:   store,
		dealer:  dealer,
		db:      db,
		events:  events,
		monitor: mon,
		opts:    opts,
	}

	s.round = state.NewRoundMachine(s)
	s.monitor.SetPhase("", s.Phase())
	s.round.OnChange(s.monitor.SetPhase)
	return s, nil
}

// PlayerCount implements state.RoundContext.
func (s *PlayerService) PlayerCount() int {
	return s.store.Len()
}

func (s *PlayerService) Phase() string {
	return s.round.GetCurrentState().GetID()
}

func (s *PlayerService) enterPhase(phase string) {
	if err := s.round.ChangeTo(phase); err != nil {
		logger.Log.Debugf("Round stays in %s phase: %v", s.Phase(), err)
	}
}

func (s *PlayerService) publish(msgID uint16, event interface{}) {
	if s.events != nil {
		s.events.Publish(msgID, event)
	}
}

// TakeTurn decides and applies one turn for id atomically. An inactive player is
// answered with a fold without touching the record.
func (s *PlayerService) TakeTurn(ctx context.Context, id string, potSize, currentBet int64) (TurnResult, error) {
	if potSize < 0 || currentBet < 0 {
		return TurnResult{}, fmt.Errorf("%w: pot_size and current_bet must not be negative", ErrValidation)
	}

	start := s.opts.Clock.Now()
	var decision strategy.Decision

	rec, err := s.store.Update(id, func(rec *models.PlayerRecord) error {
		if !rec.IsActive {
			decision = strategy.Fold("auto-fold")
			return nil
		}

		decision = strategy.Decide(*rec, potSize, currentBet)
		switch decision.Action {
		case models.ActionBet:
			// Decide caps bets at the balance; the store still must never overdraw.
			if decision.Amount > rec.Balance {
				return fmt.Errorf("%w: bet %d exceeds balance %d", ErrInsufficientBalance, decision.Amount, rec.Balance)
			}
			rec.Balance -= decision.Amount
			rec.CurrentBet += decision.Amount
		case models.ActionFold:
			rec.IsActive = false
		case models.ActionShow:
		}
		return nil
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("turn for %s: %w", id, err)
	}

	logger.Log.Infof("Player %s decision: %s %d (%s), balance %d", id, decision.Action, decision.Amount, decision.Reason, rec.Balance)

	s.lastTurnMutex.Lock()
	s.lastTurn = id
	s.lastTurnMutex.Unlock()

	record := models.TurnRecord{
		ID:           uuid.NewString(),
		PlayerID:     id,
		PotSize:      potSize,
		CurrentBet:   currentBet,
		Action:       decision.Action,
		Amount:       decision.Amount,
		BalanceAfter: rec.Balance,
		Reason:       decision.Reason,
		CreatedAt:    s.opts.Clock.Now(),
	}
	if err := s.db.SaveTurnRecord(ctx, record); err != nil {
		logger.Log.Errorf("Failed to save turn record for %s: %v", id, err)
	}

	s.enterPhase(state.PhasePlaying)
	s.publish(network.MsgTypeTurn, record)
	s.monitor.ObserveTurn(string(decision.Action), s.opts.Clock.Since(start))

	return TurnResult{Action: decision.Action, Amount: decision.Amount}, nil
}

// JoinGame seats name with the configured balance and a fresh hand. The dealer is
// notified before anything is stored, so a failed notification leaves the local
// view exactly as it was.
func (s *PlayerService) JoinGame(ctx context.Context, name string) (JoinResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return JoinResult{}, fmt.Errorf("%w: player name is required", ErrValidation)
	}

	rec := s.store.NewRecord(name, s.opts.InitialBalance)

	if s.opts.NotifyOnJoin {
		if s.dealer == nil {
			return JoinResult{}, fmt.Errorf("%w: no dealer configured", ErrUpstreamUnavailable)
		}
		if err := s.dealer.Join(ctx, name, s.opts.HostURL); err != nil {
			s.monitor.IncDealerFailure("join")
			logger.Log.Errorf("Failed to notify dealer about %s: %v", name, err)
			return JoinResult{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
	}

	s.store.Put(rec)
	s.monitor.SetSeatedPlayers(s.store.Len())
	s.enterPhase(state.PhasePlaying)

	logger.Log.Infof("Player %s joined the game with balance %d", name, rec.Balance)
	s.publish(network.MsgTypePlayerJoined, rec.Summary())

	return JoinResult{Status: "joined", Player: name, Hand: rec.Hand}, nil
}

// EndGame records the finished round and resets every player. It always
// succeeds and calling it repeatedly leaves the same state.
func (s *PlayerService) EndGame(ctx context.Context) models.GameRecord {
	snapshot := s.store.Snapshot()
	summaries := make([]models.PlayerSummary, 0, len(snapshot))
	for _, rec := range snapshot {
		summaries = append(summaries, rec.Summary())
	}

	record := models.GameRecord{
		ID:      uuid.NewString(),
		Players: summaries,
		EndedAt: s.opts.Clock.Now(),
	}
	if err := s.db.SaveGameRecord(ctx, record); err != nil {
		logger.Log.Errorf("Failed to save game record: %v", err)
	}

	s.store.ResetAll(s.opts.InitialBalance)
	s.enterPhase(state.PhaseSettled)

	s.lastTurnMutex.Lock()
	s.lastTurn = ""
	s.lastTurnMutex.Unlock()

	s.monitor.IncGamesEnded()
	s.publish(network.MsgTypeGameEnd, record)
	logger.Log.Infof("Game ended, %d players reset to balance %d", len(summaries), s.opts.InitialBalance)
	return record
}

// ManualBet debits amount directly, bypassing the decision heuristic.
func (s *PlayerService) ManualBet(ctx context.Context, id string, amount int64) (BalanceResult, error) {
	if amount <= 0 {
		return BalanceResult{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	rec, err := s.store.Update(id, func(rec *models.PlayerRecord) error {
		if !rec.IsActive {
			return fmt.Errorf("%w: player %s has folded", ErrValidation, id)
		}
		if amount > rec.Balance {
			return fmt.Errorf("%w: bet %d exceeds balance %d", ErrInsufficientBalance, amount, rec.Balance)
		}
		rec.Balance -= amount
		rec.CurrentBet += amount
		return nil
	})
	if err != nil {
		return BalanceResult{}, fmt.Errorf("bet for %s: %w", id, err)
	}

	s.monitor.IncManualAction(string(models.ActionBet))
	s.enterPhase(state.PhasePlaying)
	s.publish(network.MsgTypeBet, rec.Summary())
	logger.Log.Infof("Player %s bet %d, balance %d", id, amount, rec.Balance)

	return BalanceResult{Status: "bet placed", NewBalance: rec.Balance}, nil
}

func (s *PlayerService) ManualFold(ctx context.Context, id string) error {
	rec, err := s.store.Update(id, func(rec *models.PlayerRecord) error {
		rec.IsActive = false
		return nil
	})
	if err != nil {
		return fmt.Errorf("fold for %s: %w", id, err)
	}

	s.monitor.IncManualAction(string(models.ActionFold))
	s.publish(network.MsgTypeFold, rec.Summary())
	logger.Log.Infof("Player %s folded", id)
	return nil
}

// Show reveals the hand. It never changes the record.
func (s *PlayerService) Show(ctx context.Context, id string) ([]string, error) {
	rec, err := s.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("show for %s: %w", id, err)
	}

	s.monitor.IncManualAction(string(models.ActionShow))
	s.publish(network.MsgTypeShow, map[string]interface{}{
		"player": id,
		"cards":  rec.Hand,
	})
	return rec.Hand, nil
}

func (s *PlayerService) Cards(ctx context.Context, id string) ([]string, error) {
	rec, err := s.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("cards for %s: %w", id, err)
	}
	return rec.Hand, nil
}

func (s *PlayerService) Player(ctx context.Context, id string) (models.PlayerRecord, error) {
	return s.store.Get(id)
}

// Pot is the dealer's pot, or 0 when the dealer cannot be reached.
func (s *PlayerService) Pot(ctx context.Context) int64 {
	if s.dealer == nil {
		return 0
	}
	pot, err := s.dealer.ShowPot(ctx)
	if err != nil {
		s.monitor.IncDealerFailure("show_pot")
		logger.Log.Warnf("Failed to fetch pot status: %v", err)
		return 0
	}
	return pot
}

// GameStatus reports the local view of the round.
func (s *PlayerService) GameStatus(ctx context.Context) GameStatus {
	pot := s.Pot(ctx)

	snapshot := s.store.Snapshot()
	summaries := make([]models.PlayerSummary, 0, len(snapshot))
	for _, rec := range snapshot {
		summaries = append(summaries, rec.Summary())
	}

	s.lastTurnMutex.RLock()
	current := s.lastTurn
	s.lastTurnMutex.RUnlock()

	phase := s.Phase()
	return GameStatus{
		IsActive:    phase == state.PhasePlaying,
		Phase:       phase,
		Pot:         pot,
		CurrentTurn: current,
		Players:     summaries,
	}
}

// History returns the most recent turns of a seated player, newest first.
func (s *PlayerService) History(ctx context.Context, id string, limit int) ([]models.TurnRecord, error) {
	if _, err := s.store.Get(id); err != nil {
		return nil, fmt.Errorf("history for %s: %w", id, err)
	}
	records, err := s.db.ListTurnRecords(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", id, err)
	}
	return records, nil
}

// DealerHealth pings the dealer.
func (s *PlayerService) DealerHealth(ctx context.Context) error {
	if s.dealer == nil {
		return fmt.Errorf("%w: no dealer configured", ErrUpstreamUnavailable)
	}
	if err := s.dealer.Ping(ctx); err != nil {
		s.monitor.IncDealerFailure("ping")
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInsufficientBalance)
}
