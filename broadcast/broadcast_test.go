package broadcast

import (
	"errors"
	"net"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/fishduel/network"
	"github.com/wfunc/fishduel/session"
)

type nopConnection struct{}

func (nopConnection) Send([]byte) error                    { return nil }
func (nopConnection) Ping() error                          { return nil }
func (nopConnection) Close() error                         { return nil }
func (nopConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (nopConnection) SetHeartbeat(time.Duration)           {}
func (nopConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func setup(t *testing.T, ids ...string) (*RoomBroadcaster, map[string]*session.Session) {
	t.Helper()
	sessions := session.NewManager()
	out := make(map[string]*session.Session)
	for _, id := range ids {
		s := session.NewSession(id, nopConnection{}, 4, nil)
		sessions.Add(s)
		out[id] = s
	}
	return NewRoomBroadcaster(sessions), out
}

// drain reads every queued frame without running a write pump.
func drain(t *testing.T, s *session.Session) []*network.Packet {
	t.Helper()
	conn := &recordingConnection{}
	s.Conn = conn
	go s.WritePump(time.Hour)
	time.Sleep(20 * time.Millisecond)
	s.Close()
	var packets []*network.Packet
	for _, frame := range conn.frames() {
		p, err := network.Decode(frame)
		require.NoError(t, err)
		packets = append(packets, p)
	}
	return packets
}

func TestJoinLeaveMembers(t *testing.T) {
	b, _ := setup(t)
	b.Join("ROOM01", "a")
	b.Join("ROOM01", "b")
	b.Join("ROOM02", "c")

	members := b.Members("ROOM01")
	sort.Strings(members)
	assert.Equal(t, []string{"a", "b"}, members)

	b.Leave("ROOM01", "a")
	b.Leave("ROOM01", "b")
	assert.Empty(t, b.Members("ROOM01"))
	_, exists := b.groups["ROOM01"]
	assert.False(t, exists)

	b.Leave("NOPE00", "x")
}

func TestBroadcastToRoom(t *testing.T) {
	b, sessions := setup(t, "a", "b", "c")
	b.Join("ROOM01", "a")
	b.Join("ROOM01", "b")
	b.Join("ROOM02", "c")

	require.NoError(t, b.BroadcastToRoom("ROOM01", network.EventFishingStarted, network.PlayerEvent{PlayerIndex: 1}))

	for _, id := range []string{"a", "b"} {
		packets := drain(t, sessions[id])
		require.Len(t, packets, 1, id)
		assert.Equal(t, network.EventFishingStarted, packets[0].Event)
	}
	assert.Empty(t, drain(t, sessions["c"]))
}

func TestBroadcastSkipsMissingSession(t *testing.T) {
	b, _ := setup(t)
	b.Join("ROOM01", "ghost")
	assert.NoError(t, b.BroadcastToRoom("ROOM01", network.EventBoatMoved, network.BoatMoved{}))
}

func TestSendTo(t *testing.T) {
	b, sessions := setup(t, "a")
	require.NoError(t, b.SendTo("a", network.EventRoomCreated, "ABC123"))
	assert.True(t, errors.Is(b.SendTo("zz", network.EventRoomCreated, "ABC123"), ErrSessionNotFound))

	packets := drain(t, sessions["a"])
	require.Len(t, packets, 1)
	var code string
	require.NoError(t, packets[0].Bind(&code))
	assert.Equal(t, "ABC123", code)
}
