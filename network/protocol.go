package network

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wfunc/fishduel/models"
)

// Client -> Server events.
const (
	EventCreateRoom   = "createRoom"
	EventJoinRoom     = "joinRoom"
	EventMoveBoat     = "moveBoat"
	EventStartFishing = "startFishing"
)

// Server -> Client events.
const (
	EventRoomCreated    = "roomCreated"
	EventGameStart      = "gameStart"
	EventJoinError      = "joinError"
	EventBoatMoved      = "boatMoved"
	EventFishingStarted = "fishingStarted"
	EventFishingEnded   = "fishingEnded"
	EventFishCaught     = "fishCaught"
	EventPlayerLeft     = "playerLeft"
)

const (
	DirectionLeft  = "left"
	DirectionRight = "right"
)

var ErrMissingEvent = errors.New("packet has no event name")

// Packet is one JSON text frame: {"event": ..., "data": ...}.
type Packet struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode wraps payload in a packet envelope.
func Encode(event string, payload interface{}) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s payload: %w", event, err)
		}
		raw = data
	}
	return json.Marshal(Packet{Event: event, Data: raw})
}

// Decode parses a raw frame into a packet.
func Decode(frame []byte) (*Packet, error) {
	var p Packet
	if err := json.Unmarshal(frame, &p); err != nil {
		return nil, fmt.Errorf("decoding packet: %w", err)
	}
	if p.Event == "" {
		return nil, ErrMissingEvent
	}
	return &p, nil
}

// Bind unmarshals the packet payload into v. An absent payload leaves v untouched.
func (p *Packet) Bind(v interface{}) error {
	if len(p.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(p.Data, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", p.Event, err)
	}
	return nil
}

type JoinRoomRequest struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
}

type MoveBoatRequest struct {
	RoomCode  string `json:"roomCode"`
	Direction string `json:"direction"`
}

type BoatMoved struct {
	PlayerIndex int     `json:"playerIndex"`
	Position    float64 `json:"position"`
}

// PlayerEvent carries fishingStarted, fishingEnded and playerLeft.
type PlayerEvent struct {
	PlayerIndex int `json:"playerIndex"`
}

// FishCaught carries the caught fish and the pond after its replacement.
type FishCaught struct {
	PlayerIndex int           `json:"playerIndex"`
	Score       int           `json:"score"`
	Fish        models.Fish   `json:"fish"`
	Fishes      []models.Fish `json:"fishes"`
}
