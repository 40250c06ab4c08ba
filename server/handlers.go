package server

import (
	"github.com/wfunc/fishduel/logger"
	"github.com/wfunc/fishduel/network"
	"github.com/wfunc/fishduel/room"
	"github.com/wfunc/fishduel/session"
)

type handlerFunc func(sess *session.Session, packet *network.Packet) error

func (s *GameServer) registerHandlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		network.EventCreateRoom:   s.handleCreateRoom,
		network.EventJoinRoom:     s.handleJoinRoom,
		network.EventMoveBoat:     s.handleMoveBoat,
		network.EventStartFishing: s.handleStartFishing,
	}
}

// createRoom: data is the username string.
func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) error {
	var username string
	if err := packet.Bind(&username); err != nil {
		return err
	}
	code := s.roomManager.CreateRoom(sess.GetID(), username)
	return s.broadcaster.SendTo(sess.GetID(), network.EventRoomCreated, code)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) error {
	var req network.JoinRoomRequest
	if err := packet.Bind(&req); err != nil {
		return err
	}
	if err := s.roomManager.JoinRoom(req.RoomCode, sess.GetID(), req.Username); err != nil {
		logger.Log.Infow("join rejected", "session", sess.GetID(), "room", req.RoomCode, "error", err)
		return s.broadcaster.SendTo(sess.GetID(), network.EventJoinError, room.JoinErrorMessage)
	}
	return nil
}

func (s *GameServer) handleMoveBoat(sess *session.Session, packet *network.Packet) error {
	var req network.MoveBoatRequest
	if err := packet.Bind(&req); err != nil {
		return err
	}
	s.roomManager.MoveBoat(req.RoomCode, sess.GetID(), req.Direction)
	return nil
}

// startFishing: data is the room code string.
func (s *GameServer) handleStartFishing(sess *session.Session, packet *network.Packet) error {
	var code string
	if err := packet.Bind(&code); err != nil {
		return err
	}
	s.roomManager.StartFishing(code, sess.GetID())
	return nil
}
