package state

import (
	"errors"
	"sync"

	"github.com/wfunc/fishduel/logger"
)

// 状态机接口
type StateMachine interface {
	ChangeState(state State) error
	GetCurrentState() State
	AddTransition(from State, to State, condition func() bool) error
}

// 状态接口
type State interface {
	OnEnter()
	OnExit()
	GetID() string
}

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// 基础状态机实现
type BaseStateMachine struct {
	currentState State
	transitions  map[string]map[string]func() bool // fromState -> toState -> condition
	mutex        sync.RWMutex
}

func NewBaseStateMachine(initialState State) *BaseStateMachine {
	machine := &BaseStateMachine{
		currentState: initialState,
		transitions:  make(map[string]map[string]func() bool),
	}
	initialState.OnEnter()
	return machine
}

func (sm *BaseStateMachine) ChangeState(newState State) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	currentID := sm.currentState.GetID()
	newID := newState.GetID()

	// 检查是否有转换条件
	if conditions, exists := sm.transitions[currentID]; exists {
		if condition, exists := conditions[newID]; exists {
			if condition != nil && !condition() {
				return ErrTransitionNotAllowed
			}
		}
	}

	sm.currentState.OnExit()
	sm.currentState = newState
	sm.currentState.OnEnter()

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

const (
	PhaseWaiting = "waiting"
	PhasePlaying = "playing"
)

// 房间状态基础结构
type RoomStateBase struct {
	ID   string
	Room RoomContext
}

func (s *RoomStateBase) GetID() string {
	return s.ID
}

func (s *RoomStateBase) OnEnter() {}

func (s *RoomStateBase) OnExit() {}

// WaitingState: the room has a free seat.
type WaitingState struct {
	RoomStateBase
}

func NewWaitingState(room RoomContext) *WaitingState {
	return &WaitingState{RoomStateBase{ID: PhaseWaiting, Room: room}}
}

func (s *WaitingState) OnEnter() {
	logger.Log.Debugw("room waiting for players", "room", s.Room.GetCode(), "players", s.Room.PlayerCount())
}

// PlayingState: every seat is taken.
type PlayingState struct {
	RoomStateBase
}

func NewPlayingState(room RoomContext) *PlayingState {
	return &PlayingState{RoomStateBase{ID: PhasePlaying, Room: room}}
}

func (s *PlayingState) OnEnter() {
	logger.Log.Infow("room playing", "room", s.Room.GetCode(), "players", s.Room.PlayerCount())
}

// RoomMachine drives a room between waiting and playing based on occupancy.
type RoomMachine struct {
	*BaseStateMachine
	waiting *WaitingState
	playing *PlayingState
}

func NewRoomMachine(room RoomContext) *RoomMachine {
	m := &RoomMachine{
		waiting: NewWaitingState(room),
		playing: NewPlayingState(room),
	}
	m.BaseStateMachine = NewBaseStateMachine(m.waiting)
	m.AddTransition(m.waiting, m.playing, func() bool {
		return room.PlayerCount() >= room.MaxPlayers()
	})
	m.AddTransition(m.playing, m.waiting, func() bool {
		return room.PlayerCount() < room.MaxPlayers()
	})
	return m
}

// Sync moves the machine to the phase matching current occupancy and
// reports whether the phase changed.
func (m *RoomMachine) Sync() bool {
	var target State = m.waiting
	if m.GetCurrentState() == State(m.waiting) {
		target = m.playing
	}
	return m.ChangeState(target) == nil
}

// Phase returns the current phase ID.
func (m *RoomMachine) Phase() string {
	return m.GetCurrentState().GetID()
}
