// broadcast/broadcast.go
package broadcast

import (
	"errors"
	"sync"

	"github.com/wfunc/fishduel/logger"
	"github.com/wfunc/fishduel/network"
	"github.com/wfunc/fishduel/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// RoomBroadcaster keeps room-scoped broadcast groups, the equivalent of a
// socket joining a named channel, and delivers events through sessions.
type RoomBroadcaster struct {
	sessionManager *session.Manager
	groups         map[string]map[string]struct{} // roomCode -> sessionIDs
	mutex          sync.RWMutex
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		sessionManager: sessionManager,
		groups:         make(map[string]map[string]struct{}),
	}
}

// Join adds a session to a room's broadcast group.
func (b *RoomBroadcaster) Join(roomCode, sessionID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	members, ok := b.groups[roomCode]
	if !ok {
		members = make(map[string]struct{})
		b.groups[roomCode] = members
	}
	members[sessionID] = struct{}{}
}

// Leave removes a session from a room's group; empty groups are dropped.
func (b *RoomBroadcaster) Leave(roomCode, sessionID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	members, ok := b.groups[roomCode]
	if !ok {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(b.groups, roomCode)
	}
}

// Members returns the session IDs in a room's group.
func (b *RoomBroadcaster) Members(roomCode string) []string {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	ids := make([]string, 0, len(b.groups[roomCode]))
	for id := range b.groups[roomCode] {
		ids = append(ids, id)
	}
	return ids
}

// BroadcastToRoom encodes the event once and queues it on every member.
// A member whose queue is full or closed is skipped and logged.
func (b *RoomBroadcaster) BroadcastToRoom(roomCode, event string, payload interface{}) error {
	data, err := network.Encode(event, payload)
	if err != nil {
		return err
	}

	for _, id := range b.Members(roomCode) {
		s, ok := b.sessionManager.Get(id)
		if !ok {
			continue
		}
		if err := s.SendRaw(data); err != nil {
			logger.Log.Warnw("dropping room broadcast", "room", roomCode, "session", id, "event", event, "error", err)
		}
	}
	return nil
}

// SendTo delivers an event to a single session.
func (b *RoomBroadcaster) SendTo(sessionID, event string, payload interface{}) error {
	s, ok := b.sessionManager.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	return s.Send(event, payload)
}
