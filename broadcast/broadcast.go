// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"

	"github.com/wfunc/teenpatti-player/logger"
	"github.com/wfunc/teenpatti-player/network"
	"github.com/wfunc/teenpatti-player/session"
)

// 广播接口
type Broadcaster interface {
	BroadcastToAll(msgID uint16, data []byte) error
	Publish(msgID uint16, event interface{})
}

// 基于会话的广播器
type SessionBroadcaster struct {
	sessionManager *session.Manager
}

func NewSessionBroadcaster(sessionManager *session.Manager) *SessionBroadcaster {
	return &SessionBroadcaster{
		sessionManager: sessionManager,
	}
}

// BroadcastToAll sends data to every subscriber. Subscribers whose connection
// fails are closed and dropped.
func (b *SessionBroadcaster) BroadcastToAll(msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.All() {
		if err := s.Send(msgID, data); err != nil {
			logger.Log.Infof("Dropping subscriber %s after send error: %v", s.GetID(), err)
			b.sessionManager.Remove(s.GetID())
			s.Close()
		}
	}
	return nil
}

// Publish marshals event as JSON and broadcasts it.
func (b *SessionBroadcaster) Publish(msgID uint16, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorf("Error marshalling %s event: %v", network.MsgName(msgID), err)
		return
	}
	b.BroadcastToAll(msgID, data)
}
