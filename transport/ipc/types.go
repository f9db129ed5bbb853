package ipc

import "github.com/voxellabs/voxel-presence/internal/codec"

type OpCode uint32

const (
	OpHandshake OpCode = 0
	OpFrame     OpCode = 1
	OpClose     OpCode = 2
	OpPing      OpCode = 3
	OpPong      OpCode = 4
)

func (op OpCode) String() string {
	switch op {
	case OpHandshake:
		return "handshake"
	case OpFrame:
		return "frame"
	case OpClose:
		return "close"
	case OpPing:
		return "ping"
	case OpPong:
		return "pong"
	default:
		return "unknown"
	}
}

// Frame is one decoded wire message.
type Frame struct {
	Op      OpCode
	Payload codec.RawMessage
}

// Handshake is the opcode 0 payload.
type Handshake struct {
	Version  int    `json:"v"`
	ClientID string `json:"client_id"`
}
