package models

import "time"

// FishType classifies a fish and determines its point value.
type FishType string

const (
	FishSmall  FishType = "small"
	FishMedium FishType = "medium"
	FishLarge  FishType = "large"
)

// FishTypes lists every fish type in generation order.
var FishTypes = []FishType{FishSmall, FishMedium, FishLarge}

// Points returns the score awarded for catching a fish of this type.
func (t FishType) Points() int {
	switch t {
	case FishSmall:
		return 10
	case FishMedium:
		return 20
	case FishLarge:
		return 30
	default:
		return 0
	}
}

// Fish swims at a horizontal position in [0,100).
type Fish struct {
	Position float64  `json:"position"`
	Type     FishType `json:"type"`
	Points   int      `json:"points"`
}

// Player is one occupant of a room. ID is the owning connection identifier.
type Player struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Position float64 `json:"position"`
	Score    int     `json:"score"`
	Fishing  bool    `json:"fishing"`
}

// RoomSnapshot is the full room view sent with gameStart.
type RoomSnapshot struct {
	Code    string   `json:"code"`
	Phase   string   `json:"phase"`
	Players []Player `json:"players"`
	Fishes  []Fish   `json:"fishes"`
}

// RoomEvent is the kind of a RoomRecord.
type RoomEvent string

const (
	RoomCreated RoomEvent = "created"
	RoomClosed  RoomEvent = "closed"
)

// RoomRecord is a journal entry for a room lifecycle change.
type RoomRecord struct {
	RoomCode   string    `json:"room_code"`
	Event      RoomEvent `json:"event"`
	Players    []string  `json:"players"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CatchRecord is a journal entry for one caught fish.
type CatchRecord struct {
	RoomCode     string    `json:"room_code"`
	PlayerID     string    `json:"player_id"`
	Username     string    `json:"username"`
	FishType     FishType  `json:"fish_type"`
	Points       int       `json:"points"`
	ScoreAfter   int       `json:"score_after"`
	FishingSince time.Time `json:"fishing_since"`
	CaughtAt     time.Time `json:"caught_at"`
}

// LeaderboardEntry aggregates catches per username.
type LeaderboardEntry struct {
	Username    string `json:"username"`
	Catches     int    `json:"catches"`
	TotalPoints int    `json:"total_points"`
}

// RegistryStats is a point-in-time count of live rooms and players.
type RegistryStats struct {
	Rooms   int `json:"rooms"`
	Players int `json:"players"`
	Waiting int `json:"waiting"`
	Playing int `json:"playing"`
}
