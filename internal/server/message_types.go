package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Client to server messages
	MessageTypeIntent       MessageType = "intent"
	MessageTypeSpinComplete MessageType = "spin_complete"

	// Server to client messages
	MessageTypeHello    MessageType = "hello"
	MessageTypeState    MessageType = "state"
	MessageTypeSpin     MessageType = "spin"
	MessageTypeRejected MessageType = "rejected"
	MessageTypeError    MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
