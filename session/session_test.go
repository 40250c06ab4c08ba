package session

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/wfunc/fishduel/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	mu      sync.Mutex
	sent    [][]byte
	pings   int
	closed  bool
	sendErr error
}

func (m *MockConnection) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, data)
	return nil
}

func (m *MockConnection) Ping() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pings++
	return nil
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(time.Duration)           {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func (m *MockConnection) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sess := NewSession("test_session_1", &MockConnection{}, 4, nil)

	manager.Add(sess)
	assert.Equal(t, 1, manager.Count())

	got, exists := manager.Get("test_session_1")
	require.True(t, exists)
	assert.Same(t, sess, got)

	manager.Remove("test_session_1")
	assert.Equal(t, 0, manager.Count())
	_, exists = manager.Get("test_session_1")
	assert.False(t, exists)
}

func TestSession_SendIsNonBlocking(t *testing.T) {
	sess := NewSession("s", &MockConnection{}, 1, nil)

	require.NoError(t, sess.Send(network.EventBoatMoved, network.BoatMoved{Position: 55}))
	err := sess.Send(network.EventBoatMoved, network.BoatMoved{Position: 60})
	assert.True(t, errors.Is(err, ErrSendBufferFull))
}

func TestSession_SendAfterClose(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("s", conn, 4, nil)
	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())

	assert.True(t, conn.closed)
	assert.True(t, errors.Is(sess.SendRaw([]byte("x")), ErrSessionClosed))
}

func TestSession_WritePumpDrainsInOrder(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("s", conn, 8, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, sess.Send(network.EventBoatMoved, network.BoatMoved{Position: float64(i)}))
	}

	done := make(chan error, 1)
	go func() { done <- sess.WritePump(time.Hour) }()

	require.Eventually(t, func() bool { return conn.sentCount() == 3 }, time.Second, 5*time.Millisecond)
	sess.Close()
	require.NoError(t, <-done)

	for i, frame := range conn.sent {
		p, err := network.Decode(frame)
		require.NoError(t, err)
		var moved network.BoatMoved
		require.NoError(t, p.Bind(&moved))
		assert.Equal(t, float64(i), moved.Position)
	}
}

func TestSession_WritePumpStopsOnSendError(t *testing.T) {
	conn := &MockConnection{sendErr: errors.New("broken pipe")}
	sess := NewSession("s", conn, 8, nil)
	require.NoError(t, sess.SendRaw([]byte("x")))
	assert.Error(t, sess.WritePump(time.Hour))
}

func TestSession_Allow(t *testing.T) {
	unlimited := NewSession("a", &MockConnection{}, 1, nil)
	for i := 0; i < 100; i++ {
		assert.True(t, unlimited.Allow())
	}

	limited := NewSession("b", &MockConnection{}, 1, rate.NewLimiter(rate.Every(time.Hour), 2))
	assert.True(t, limited.Allow())
	assert.True(t, limited.Allow())
	assert.False(t, limited.Allow())
}

func TestManager_CloseAll(t *testing.T) {
	manager := NewManager()
	c1, c2 := &MockConnection{}, &MockConnection{}
	manager.Add(NewSession("1", c1, 1, nil))
	manager.Add(NewSession("2", c2, 1, nil))

	manager.CloseAll()
	assert.True(t, c1.closed)
	assert.True(t, c2.closed)
}
