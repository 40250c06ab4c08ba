package broadcast

import (
	"net"
	"sync"
	"time"

	"github.com/wfunc/fishduel/network"
)

type recordingConnection struct {
	mu   sync.Mutex
	sent [][]byte
}

func (c *recordingConnection) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, data)
	return nil
}

func (c *recordingConnection) frames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.sent...)
}

func (c *recordingConnection) Ping() error                          { return nil }
func (c *recordingConnection) Close() error                         { return nil }
func (c *recordingConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (c *recordingConnection) SetHeartbeat(time.Duration)           {}
func (c *recordingConnection) ReadPacket() (*network.Packet, error) { return nil, nil }
