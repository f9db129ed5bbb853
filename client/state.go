package client

// State is the connection lifecycle. Transitions only move forward; Closed is
// terminal.
type State int

const (
	Disconnected State = iota
	Connecting
	HandshakeSent
	Ready
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case HandshakeSent:
		return "handshake_sent"
	case Ready:
		return "ready"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
