// session/session.go
package session

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wfunc/fishduel/network"
)

var (
	ErrSessionClosed  = errors.New("session closed")
	ErrSendBufferFull = errors.New("session send buffer full")
)

// Session is one websocket connection. Its ID is the connection identifier
// used as the player key by the room registry.
type Session struct {
	ID        string
	Conn      network.Connection
	CreatedAt time.Time

	outbox     chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	limiter    *rate.Limiter
	mutex      sync.RWMutex
	lastActive time.Time
}

// NewSession wraps conn. limiter may be nil to disable inbound rate limiting.
func NewSession(id string, conn network.Connection, sendBuffer int, limiter *rate.Limiter) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
		outbox:     make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
		limiter:    limiter,
	}
}

func (s *Session) GetID() string {
	return s.ID
}

// Send encodes an event and queues it for the write pump. It never blocks.
func (s *Session) Send(event string, payload interface{}) error {
	data, err := network.Encode(event, payload)
	if err != nil {
		return err
	}
	return s.SendRaw(data)
}

// SendRaw queues an already encoded frame. It never blocks.
func (s *Session) SendRaw(data []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.outbox <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// WritePump drains the outbox to the connection and pings it every
// pingInterval. It returns when the session is closed or a write fails.
func (s *Session) WritePump(pingInterval time.Duration) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-s.outbox:
			if err := s.Conn.Send(data); err != nil {
				return err
			}
		case <-ticker.C:
			if err := s.Conn.Ping(); err != nil {
				return err
			}
		case <-s.done:
			return nil
		}
	}
}

// Allow reports whether one more inbound message fits the rate limit.
func (s *Session) Allow() bool {
	if s.limiter == nil {
		return true
	}
	return s.limiter.Allow()
}

// Touch records inbound activity.
func (s *Session) Touch() {
	s.mutex.Lock()
	s.lastActive = time.Now()
	s.mutex.Unlock()
}

func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close stops the write pump and closes the connection. Safe to call twice.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.Conn.Close()
	})
	return err
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// CloseAll closes every tracked session, used on shutdown.
func (m *Manager) CloseAll() {
	m.mutex.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mutex.RUnlock()

	for _, s := range sessions {
		s.Close()
	}
}
