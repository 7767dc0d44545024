// state/round_state.go
package state

import (
	"github.com/wfunc/teenpatti-player/logger"
)

const (
	PhaseWaiting = "waiting"
	PhasePlaying = "playing"
	PhaseSettled = "settled"
)

// 回合状态基础结构
type RoundStateBase struct {
	ID    string
	Round RoundContext
}

func (s *RoundStateBase) GetID() string {
	return s.ID
}

func (s *RoundStateBase) OnEnter() {
	logger.Log.Infof("Round entered %s phase with %d players", s.ID, s.Round.PlayerCount())
}

func (s *RoundStateBase) OnExit() {}

// 等待状态：尚无玩家加入
type WaitingState struct {
	RoundStateBase
}

func NewWaitingState(round RoundContext) *WaitingState {
	return &WaitingState{RoundStateBase{ID: PhaseWaiting, Round: round}}
}

// 进行状态：至少一名玩家已加入或已行动
type PlayingState struct {
	RoundStateBase
}

func NewPlayingState(round RoundContext) *PlayingState {
	return &PlayingState{RoundStateBase{ID: PhasePlaying, Round: round}}
}

// 结算状态：end_game 之后，下一次加入或行动前
type SettledState struct {
	RoundStateBase
}

func NewSettledState(round RoundContext) *SettledState {
	return &SettledState{RoundStateBase{ID: PhaseSettled, Round: round}}
}

// NewRoundMachine wires the three round phases. A round can only be settled
// once somebody is seated, and only an empty table goes back to waiting.
func NewRoundMachine(round RoundContext) *BaseStateMachine {
	waiting := NewWaitingState(round)
	playing := NewPlayingState(round)
	settled := NewSettledState(round)

	sm := NewBaseStateMachine(waiting)
	sm.Register(playing, settled)

	seated := func() bool { return round.PlayerCount() > 0 }
	empty := func() bool { return round.PlayerCount() == 0 }

	sm.AddTransition(waiting, playing, seated)
	sm.AddTransition(waiting, settled, seated)
	sm.AddTransition(playing, waiting, empty)
	sm.AddTransition(settled, waiting, empty)
	return sm
}
