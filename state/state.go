package state

import (
	"errors"
	"fmt"
	"sync"
)

// 状态机接口
type StateMachine interface {
	ChangeState(state State) error
	ChangeTo(id string) error
	GetCurrentState() State
	AddTransition(from State, to State, condition func() bool) error
}

// 状态接口
type State interface {
	OnEnter()
	OnExit()
	GetID() string
}

var (
	// ErrTransitionNotAllowed is returned when a state transition is not allowed.
	ErrTransitionNotAllowed = errors.New("state transition not allowed")
	ErrUnknownState         = errors.New("unknown state")
)

// 基础状态机实现
type BaseStateMachine struct {
	currentState State
	states       map[string]State
	transitions  map[string]map[string]func() bool // fromState -> toState -> condition
	listeners    []func(from, to string)
	mutex        sync.RWMutex
}

func NewBaseStateMachine(initialState State) *BaseStateMachine {
	machine := &BaseStateMachine{
		currentState: initialState,
		states:       map[string]State{initialState.GetID(): initialState},
		transitions:  make(map[string]map[string]func() bool),
	}
	initialState.OnEnter()
	return machine
}

// Register makes states reachable through ChangeTo.
func (sm *BaseStateMachine) Register(states ...State) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	for _, s := range states {
		sm.states[s.GetID()] = s
	}
}

// OnChange adds a listener called after every completed transition.
func (sm *BaseStateMachine) OnChange(fn func(from, to string)) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.listeners = append(sm.listeners, fn)
}

func (sm *BaseStateMachine) ChangeTo(id string) error {
	sm.mutex.RLock()
	next, exists := sm.states[id]
	sm.mutex.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownState, id)
	}
	return sm.ChangeState(next)
}

// ChangeState 切换状态，目标与当前状态相同时不做任何事
func (sm *BaseStateMachine) ChangeState(newState State) error {
	sm.mutex.Lock()

	currentID := sm.currentState.GetID()
	newID := newState.GetID()
	if currentID == newID {
		sm.mutex.Unlock()
		return nil
	}

	// 检查是否有转换条件
	if conditions, exists := sm.transitions[currentID]; exists {
		if condition, exists := conditions[newID]; exists {
			if condition != nil && !condition() {
				sm.mutex.Unlock()
				return ErrTransitionNotAllowed
			}
		}
	}

	sm.currentState.OnExit()
	sm.currentState = newState
	sm.currentState.OnEnter()

	listeners := append([]func(from, to string){}, sm.listeners...)
	sm.mutex.Unlock()

	for _, fn := range listeners {
		fn(currentID, newID)
	}
	return nil
}

func (sm *BaseStateMachine) GetCurrentState() State {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.currentState
}

func (sm *BaseStateMachine) AddTransition(from State, to State, condition func() bool) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	fromID := from.GetID()
	toID := to.GetID()

	if _, exists := sm.transitions[fromID]; !exists {
		sm.transitions[fromID] = make(map[string]func() bool)
	}

	sm.transitions[fromID][toID] = condition
	return nil
}
