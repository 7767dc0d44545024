package network

// 事件推送消息类型
const (
	MsgTypeHeartbeat    = 1
	MsgTypePlayerJoined = 101
	MsgTypeTurn         = 201
	MsgTypeBet          = 202
	MsgTypeFold         = 203
	MsgTypeShow         = 204
	MsgTypeGameEnd      = 305
)

// MsgName returns a readable name for a message type.
func MsgName(msgID uint16) string {
	switch msgID {
	case MsgTypeHeartbeat:
		return "heartbeat"
	case MsgTypePlayerJoined:
		return "joined"
	case MsgTypeTurn:
		return "turn"
	case MsgTypeBet:
		return "bet"
	case MsgTypeFold:
		return "fold"
	case MsgTypeShow:
		return "show"
	case MsgTypeGameEnd:
		return "game_end"
	default:
		return "unknown"
	}
}
