package server

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/wfunc/fishduel/logger"
	"github.com/wfunc/fishduel/network"
	"github.com/wfunc/fishduel/session"
)

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.conns.Add(1)
	defer s.conns.Done()
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsCfg := s.cfg.WebSocket
	wsConn := network.NewWSConnection(conn, wsCfg.WriteWait, wsCfg.MaxMessageSize)
	wsConn.SetHeartbeat(wsCfg.PongWait)

	var limiter *rate.Limiter
	if wsCfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(wsCfg.RateLimit), wsCfg.RateBurst)
	}
	sess := session.NewSession(uuid.NewString(), wsConn, wsCfg.SendBuffer, limiter)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlineConnections()

	logger.Log.Infow("connection opened", "session", sess.GetID(), "remote", wsConn.RemoteAddr().String())

	go func() {
		if err := sess.WritePump(wsCfg.PingInterval); err != nil {
			logger.Log.Debugw("write pump stopped", "session", sess.GetID(), "error", err)
		}
		sess.Close()
	}()

	defer func() {
		// 先离开房间, so the remaining occupant still receives playerLeft.
		s.roomManager.RemoveConnection(sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		sess.Close()
		s.monitor.DecOnlineConnections()
		logger.Log.Infow("connection closed", "session", sess.GetID(), "remote", wsConn.RemoteAddr().String())
	}()

	for {
		packet, err := wsConn.ReadPacket()
		if err != nil {
			var decodeErr *network.DecodeError
			if errors.As(err, &decodeErr) {
				logger.Log.Warnw("malformed frame dropped", "session", sess.GetID(), "error", err)
				s.monitor.IncMessagesDropped("malformed")
				continue
			}
			return
		}
		if !sess.Allow() {
			logger.Log.Warnw("rate limited", "session", sess.GetID(), "event", packet.Event)
			s.monitor.IncMessagesDropped("rate_limited")
			continue
		}
		sess.Touch()
		if !s.dispatch(sess, packet) {
			return
		}
	}
}

// dispatch runs one handler. It reports false when the handler panicked; the
// connection is then closed and every other connection keeps running.
func (s *GameServer) dispatch(sess *session.Session, packet *network.Packet) (ok bool) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorw("handler panicked", "session", sess.GetID(), "event", packet.Event,
				"panic", r, "stack", string(debug.Stack()))
			ok = false
		}
		s.monitor.ObserveMessageLatency(time.Since(start))
	}()

	handler, found := s.handlers[packet.Event]
	if !found {
		logger.Log.Warnw("unknown event", "session", sess.GetID(), "event", packet.Event)
		s.monitor.IncMessagesDropped("unknown_event")
		return true
	}
	s.monitor.IncMessagesReceived(packet.Event)
	if err := handler(sess, packet); err != nil {
		logger.Log.Debugw("invalid payload", "session", sess.GetID(), "event", packet.Event, "error", err)
	}
	return true
}
