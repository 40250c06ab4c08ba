// room/room.go
package room

import (
	"time"

	"github.com/wfunc/fishduel/models"
	"github.com/wfunc/fishduel/state"
)

// Player is a room occupant plus the bookkeeping for its pending resolution.
type Player struct {
	models.Player
	fishingSince time.Time
}

// Room 是游戏房间的核心结构
type Room struct {
	Code      string
	Players   []*Player
	Fishes    []models.Fish
	CreatedAt time.Time

	maxPlayers int
	machine    *state.RoomMachine
}

func newRoom(code string, maxPlayers int, fishes []models.Fish, now time.Time) *Room {
	r := &Room{
		Code:       code,
		Players:    make([]*Player, 0, maxPlayers),
		Fishes:     fishes,
		CreatedAt:  now,
		maxPlayers: maxPlayers,
	}
	r.machine = state.NewRoomMachine(r)
	return r
}

// --- 实现 state.RoomContext 接口 ---

func (r *Room) GetCode() string {
	return r.Code
}

func (r *Room) PlayerCount() int {
	return len(r.Players)
}

func (r *Room) MaxPlayers() int {
	return r.maxPlayers
}

// Phase returns the room's current phase.
func (r *Room) Phase() string {
	return r.machine.Phase()
}

// IsFull reports whether every seat is taken.
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.maxPlayers
}

func (r *Room) addPlayer(connID, username string) *Player {
	p := &Player{Player: models.Player{
		ID:       connID,
		Username: username,
		Position: 50,
	}}
	r.Players = append(r.Players, p)
	r.machine.Sync()
	return p
}

// removePlayer drops the player owned by connID and returns its former index,
// or -1 if the connection is not in this room.
func (r *Room) removePlayer(connID string) int {
	idx := r.playerIndex(connID)
	if idx < 0 {
		return -1
	}
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	r.machine.Sync()
	return idx
}

func (r *Room) playerIndex(connID string) int {
	for i, p := range r.Players {
		if p.ID == connID {
			return i
		}
	}
	return -1
}

// catchableFish returns the index of the first fish strictly closer than
// radius to position, or -1. List order breaks ties, not distance.
func (r *Room) catchableFish(position, radius float64) int {
	for i, f := range r.Fishes {
		d := f.Position - position
		if d < 0 {
			d = -d
		}
		if d < radius {
			return i
		}
	}
	return -1
}

// Snapshot copies the room into its wire form.
func (r *Room) Snapshot() models.RoomSnapshot {
	players := make([]models.Player, len(r.Players))
	for i, p := range r.Players {
		players[i] = p.Player
	}
	fishes := make([]models.Fish, len(r.Fishes))
	copy(fishes, r.Fishes)
	return models.RoomSnapshot{
		Code:    r.Code,
		Phase:   r.Phase(),
		Players: players,
		Fishes:  fishes,
	}
}
