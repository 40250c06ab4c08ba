// state/interfaces.go
package state

// RoomContext is the view of a room the phase machine needs.
// Defined here so state does not import room.
type RoomContext interface {
	GetCode() string
	PlayerCount() int
	MaxPlayers() int
}
