package broadcast

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/teenpatti-player/network"
	"github.com/wfunc/teenpatti-player/session"
)

type recordingConn struct {
	fail   bool
	closed bool
	msgs   []uint16
	data   [][]byte
}

func (c *recordingConn) Send(msgID uint16, data []byte) error {
	if c.fail {
		return errors.New("broken pipe")
	}
	c.msgs = append(c.msgs, msgID)
	c.data = append(c.data, data)
	return nil
}
func (c *recordingConn) Close() error                         { c.closed = true; return nil }
func (c *recordingConn) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (c *recordingConn) SetHeartbeat(time.Duration)           {}
func (c *recordingConn) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestSessionBroadcaster_Publish(t *testing.T) {
	manager := session.NewManager()
	good := &recordingConn{}
	bad := &recordingConn{fail: true}
	manager.Add(session.NewSession("good", good))
	manager.Add(session.NewSession("bad", bad))

	b := NewSessionBroadcaster(manager)
	b.Publish(network.MsgTypeFold, map[string]string{"player": "alice"})

	require.Len(t, good.msgs, 1)
	assert.Equal(t, uint16(network.MsgTypeFold), good.msgs[0])
	assert.JSONEq(t, `{"player":"alice"}`, string(good.data[0]))

	assert.True(t, bad.closed)
	_, exists := manager.Get("bad")
	assert.False(t, exists)
	assert.Equal(t, 1, manager.Count())
}

func TestSessionBroadcaster_UnmarshalableEvent(t *testing.T) {
	manager := session.NewManager()
	conn := &recordingConn{}
	manager.Add(session.NewSession("s", conn))

	NewSessionBroadcaster(manager).Publish(network.MsgTypeTurn, make(chan int))
	assert.Empty(t, conn.msgs)
}
