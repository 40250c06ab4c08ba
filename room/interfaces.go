package room

import (
	"github.com/wfunc/fishduel/models"
	"github.com/wfunc/fishduel/timer"
)

// Broadcaster delivers events to room groups and single connections.
// This is defined here to break the import cycle between room and broadcast.
type Broadcaster interface {
	Join(roomCode, connID string)
	Leave(roomCode, connID string)
	BroadcastToRoom(roomCode, event string, payload interface{}) error
	SendTo(connID, event string, payload interface{}) error
}

// Scheduler queues fishing resolutions; the resolved task comes back through
// Manager.ResolveFishing.
type Scheduler interface {
	Schedule(task timer.Task) int64
}

// Recorder observes room lifecycle and catches. Implementations must not block.
type Recorder interface {
	RecordRoom(rec models.RoomRecord)
	RecordCatch(rec models.CatchRecord)
}

// MultiRecorder fans records out to several recorders.
type MultiRecorder []Recorder

func (m MultiRecorder) RecordRoom(rec models.RoomRecord) {
	for _, r := range m {
		r.RecordRoom(rec)
	}
}

func (m MultiRecorder) RecordCatch(rec models.CatchRecord) {
	for _, r := range m {
		r.RecordCatch(rec)
	}
}
