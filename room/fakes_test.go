package room

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/wfunc/fishduel/models"
	"github.com/wfunc/fishduel/timer"
)

type sentEvent struct {
	Room    string
	To      string
	Event   string
	Payload interface{}
}

// MockBroadcaster records every group change and event.
type MockBroadcaster struct {
	mu     sync.Mutex
	groups map[string]map[string]bool
	events []sentEvent
}

func newMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{groups: make(map[string]map[string]bool)}
}

func (b *MockBroadcaster) Join(roomCode, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.groups[roomCode] == nil {
		b.groups[roomCode] = make(map[string]bool)
	}
	b.groups[roomCode][connID] = true
}

func (b *MockBroadcaster) Leave(roomCode, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.groups[roomCode], connID)
	if len(b.groups[roomCode]) == 0 {
		delete(b.groups, roomCode)
	}
}

func (b *MockBroadcaster) BroadcastToRoom(roomCode, event string, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, sentEvent{Room: roomCode, Event: event, Payload: payload})
	return nil
}

func (b *MockBroadcaster) SendTo(connID, event string, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, sentEvent{To: connID, Event: event, Payload: payload})
	return nil
}

func (b *MockBroadcaster) eventNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.events))
	for i, e := range b.events {
		names[i] = e.Event
	}
	return names
}

func (b *MockBroadcaster) last() sentEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.events[len(b.events)-1]
}

func (b *MockBroadcaster) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}

// MockScheduler keeps tasks until the test fires them.
type MockScheduler struct {
	tasks []timer.Task
}

func (s *MockScheduler) Schedule(task timer.Task) int64 {
	task.ID = int64(len(s.tasks) + 1)
	s.tasks = append(s.tasks, task)
	return task.ID
}

type MockRecorder struct {
	rooms   []models.RoomRecord
	catches []models.CatchRecord
}

func (r *MockRecorder) RecordRoom(rec models.RoomRecord)   { r.rooms = append(r.rooms, rec) }
func (r *MockRecorder) RecordCatch(rec models.CatchRecord) { r.catches = append(r.catches, rec) }

type fixture struct {
	m         *Manager
	b         *MockBroadcaster
	scheduler *MockScheduler
	recorder  *MockRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		b:         newMockBroadcaster(),
		scheduler: &MockScheduler{},
		recorder:  &MockRecorder{},
	}
	f.m = NewRoomManager(DefaultOptions(), NewGenerator(rand.NewSource(42)), f.b, f.scheduler, f.recorder)
	return f
}

// twoPlayerRoom creates a room owned by "c1" and seats "c2".
func (f *fixture) twoPlayerRoom(t *testing.T) string {
	t.Helper()
	code := f.m.CreateRoom("c1", "Ann")
	if err := f.m.JoinRoom(code, "c2", "Bo"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	f.b.reset()
	return code
}

func (f *fixture) setFishes(code string, positions ...float64) {
	fishes := make([]models.Fish, len(positions))
	for i, p := range positions {
		fishes[i] = models.Fish{Position: p, Type: models.FishMedium, Points: models.FishMedium.Points()}
	}
	f.m.rooms[code].Fishes = fishes
}
