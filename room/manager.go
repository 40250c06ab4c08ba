package room

import (
	"errors"
	"math"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/wfunc/fishduel/logger"
	"github.com/wfunc/fishduel/models"
	"github.com/wfunc/fishduel/network"
	"github.com/wfunc/fishduel/state"
	"github.com/wfunc/fishduel/timer"
)

var ErrRoomFullOrMissing = errors.New("room is full or does not exist")

// JoinErrorMessage is the fixed text sent with joinError for any failed join.
const JoinErrorMessage = "Room is full or does not exist"

const (
	DefaultCreatorName = "Player 1"
	DefaultJoinerName  = "Player 2"
	maxUsernameLength  = 24
)

type Options struct {
	MaxPlayers     int
	FishCount      int
	MoveStep       float64
	CatchRadius    float64
	MinFishingWait time.Duration
	MaxFishingWait time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxPlayers:     2,
		FishCount:      5,
		MoveStep:       5,
		CatchRadius:    10,
		MinFishingWait: 2 * time.Second,
		MaxFishingWait: 5 * time.Second,
	}
}

// Manager is the room registry. Every mutation runs under one mutex, which
// serialises client actions and timer resolutions the way a single event
// loop would. Broadcasts are queued while the lock is held so clients see
// events in mutation order.
type Manager struct {
	rooms       map[string]*Room
	mutex       sync.Mutex
	opts        Options
	gen         *Generator
	broadcaster Broadcaster
	scheduler   Scheduler
	recorder    Recorder
	now         func() time.Time
}

// NewRoomManager builds an empty registry. recorder may be nil.
func NewRoomManager(opts Options, gen *Generator, broadcaster Broadcaster, scheduler Scheduler, recorder Recorder) *Manager {
	if recorder == nil {
		recorder = MultiRecorder(nil)
	}
	return &Manager{
		rooms:       make(map[string]*Room),
		opts:        opts,
		gen:         gen,
		broadcaster: broadcaster,
		scheduler:   scheduler,
		recorder:    recorder,
		now:         time.Now,
	}
}

// CreateRoom opens a room with connID as its first player and returns the
// code. A connection that already occupies a room leaves it first.
func (m *Manager) CreateRoom(connID, username string) string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.leaveLocked(connID)

	code := m.uniqueCodeLocked()
	now := m.now()
	r := newRoom(code, m.opts.MaxPlayers, m.gen.Fishes(m.opts.FishCount), now)
	p := r.addPlayer(connID, normalizeUsername(username, DefaultCreatorName))
	m.rooms[code] = r
	m.broadcaster.Join(code, connID)

	m.recorder.RecordRoom(models.RoomRecord{
		RoomCode:   code,
		Event:      models.RoomCreated,
		Players:    []string{p.Username},
		OccurredAt: now,
	})
	logger.Log.Infow("room created", "room", code, "conn", connID, "username", p.Username)
	return code
}

// JoinRoom seats connID in an existing room and broadcasts gameStart to all
// occupants. A missing or full room, or the joiner's own room, fails with
// ErrRoomFullOrMissing and leaves every room untouched.
func (m *Manager) JoinRoom(roomCode, connID, username string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	r, ok := m.rooms[normalizeCode(roomCode)]
	if !ok {
		return ErrRoomFullOrMissing
	}
	if r.IsFull() || r.playerIndex(connID) >= 0 {
		return ErrRoomFullOrMissing
	}

	m.leaveLocked(connID)

	p := r.addPlayer(connID, normalizeUsername(username, DefaultJoinerName))
	m.broadcaster.Join(r.Code, connID)
	m.broadcaster.BroadcastToRoom(r.Code, network.EventGameStart, r.Snapshot())

	logger.Log.Infow("player joined room", "room", r.Code, "conn", connID, "username", p.Username, "phase", r.Phase())
	return nil
}

// RemoveConnection drops connID from whichever room holds it. An emptied
// room is deleted; a remaining occupant is told with playerLeft.
func (m *Manager) RemoveConnection(connID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.leaveLocked(connID)
}

func (m *Manager) leaveLocked(connID string) {
	for code, r := range m.rooms {
		idx := r.removePlayer(connID)
		if idx < 0 {
			continue
		}
		m.broadcaster.Leave(code, connID)

		if len(r.Players) == 0 {
			delete(m.rooms, code)
			m.recorder.RecordRoom(models.RoomRecord{
				RoomCode:   code,
				Event:      models.RoomClosed,
				Players:    []string{},
				OccurredAt: m.now(),
			})
			logger.Log.Infow("room closed", "room", code)
			continue
		}

		m.broadcaster.BroadcastToRoom(code, network.EventPlayerLeft, network.PlayerEvent{PlayerIndex: idx})
		logger.Log.Infow("player left room", "room", code, "conn", connID, "remaining", len(r.Players))
	}
}

// MoveBoat shifts the player's boat by one step and clamps it to [0,100].
// Unknown rooms, players or directions are ignored.
func (m *Manager) MoveBoat(roomCode, connID, direction string) bool {
	var delta float64
	switch direction {
	case network.DirectionLeft:
		delta = -m.opts.MoveStep
	case network.DirectionRight:
		delta = m.opts.MoveStep
	default:
		logger.Log.Debugw("ignoring move with unknown direction", "conn", connID, "direction", direction)
		return false
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	r, idx := m.lookupLocked(roomCode, connID)
	if r == nil {
		return false
	}
	p := r.Players[idx]
	p.Position = clamp(p.Position + delta)

	m.broadcaster.BroadcastToRoom(r.Code, network.EventBoatMoved, network.BoatMoved{
		PlayerIndex: idx,
		Position:    p.Position,
	})
	return true
}

// StartFishing marks the player as fishing and schedules one resolution
// after a uniform wait in [MinFishingWait, MaxFishingWait). A player who is
// already fishing, or an unknown room/player, is ignored.
func (m *Manager) StartFishing(roomCode, connID string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	r, idx := m.lookupLocked(roomCode, connID)
	if r == nil {
		return false
	}
	p := r.Players[idx]
	if p.Fishing {
		return false
	}

	now := m.now()
	p.Fishing = true
	p.fishingSince = now
	m.scheduler.Schedule(timer.Task{
		RoomCode:    r.Code,
		PlayerID:    connID,
		PlayerIndex: idx,
		ScheduledAt: now,
		Execute:     now.Add(m.gen.Duration(m.opts.MinFishingWait, m.opts.MaxFishingWait)),
	})

	m.broadcaster.BroadcastToRoom(r.Code, network.EventFishingStarted, network.PlayerEvent{PlayerIndex: idx})
	return true
}

// ResolveFishing settles a scheduled fishing task. It is a no-op unless the
// room still exists and the same player is still fishing from the same start.
// The first fish within the catch radius is caught and replaced; fishing
// always ends.
func (m *Manager) ResolveFishing(task timer.Task) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	r, ok := m.rooms[task.RoomCode]
	if !ok {
		logger.Log.Debugw("fishing resolution for closed room", "room", task.RoomCode, "conn", task.PlayerID)
		return
	}
	idx := r.playerIndex(task.PlayerID)
	if idx < 0 {
		logger.Log.Debugw("fishing resolution for departed player", "room", task.RoomCode, "conn", task.PlayerID)
		return
	}
	p := r.Players[idx]
	if !p.Fishing || !p.fishingSince.Equal(task.ScheduledAt) {
		return
	}
	if idx != task.PlayerIndex {
		logger.Log.Debugw("player index shifted while fishing", "room", r.Code, "from", task.PlayerIndex, "to", idx)
	}

	if fi := r.catchableFish(p.Position, m.opts.CatchRadius); fi >= 0 {
		caught := r.Fishes[fi]
		p.Score += caught.Points
		r.Fishes = slices.Delete(r.Fishes, fi, fi+1)
		r.Fishes = append(r.Fishes, m.gen.Fish())

		m.broadcaster.BroadcastToRoom(r.Code, network.EventFishCaught, network.FishCaught{
			PlayerIndex: idx,
			Score:       p.Score,
			Fish:        caught,
			Fishes:      slices.Clone(r.Fishes),
		})
		m.recorder.RecordCatch(models.CatchRecord{
			RoomCode:     r.Code,
			PlayerID:     p.ID,
			Username:     p.Username,
			FishType:     caught.Type,
			Points:       caught.Points,
			ScoreAfter:   p.Score,
			FishingSince: task.ScheduledAt,
			CaughtAt:     m.now(),
		})
		logger.Log.Infow("fish caught", "room", r.Code, "username", p.Username, "type", caught.Type, "score", p.Score)
	}

	p.Fishing = false
	p.fishingSince = time.Time{}
	m.broadcaster.BroadcastToRoom(r.Code, network.EventFishingEnded, network.PlayerEvent{PlayerIndex: idx})
}

func (m *Manager) lookupLocked(roomCode, connID string) (*Room, int) {
	r, ok := m.rooms[normalizeCode(roomCode)]
	if !ok {
		return nil, -1
	}
	idx := r.playerIndex(connID)
	if idx < 0 {
		return nil, -1
	}
	return r, idx
}

// uniqueCodeLocked draws codes until one is not in use.
func (m *Manager) uniqueCodeLocked() string {
	for {
		code := m.gen.RoomCode()
		if _, taken := m.rooms[code]; !taken {
			return code
		}
		logger.Log.Debugw("room code collision", "room", code)
	}
}

// Snapshot returns a copy of a room's state.
func (m *Manager) Snapshot(roomCode string) (models.RoomSnapshot, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	r, ok := m.rooms[normalizeCode(roomCode)]
	if !ok {
		return models.RoomSnapshot{}, false
	}
	return r.Snapshot(), true
}

// RoomOf returns the code of the room holding connID.
func (m *Manager) RoomOf(connID string) (string, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for code, r := range m.rooms {
		if r.playerIndex(connID) >= 0 {
			return code, true
		}
	}
	return "", false
}

// Stats counts live rooms and players.
func (m *Manager) Stats() models.RegistryStats {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stats := models.RegistryStats{Rooms: len(m.rooms)}
	for _, r := range m.rooms {
		stats.Players += len(r.Players)
		if r.Phase() == state.PhasePlaying {
			stats.Playing++
		} else {
			stats.Waiting++
		}
	}
	return stats
}

func clamp(position float64) float64 {
	return math.Max(0, math.Min(100, position))
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeUsername(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if utf8.RuneCountInString(name) > maxUsernameLength {
		name = string([]rune(name)[:maxUsernameLength])
	}
	return name
}
