package server

import (
	"encoding/json"
	"time"

	"github.com/lox/wheelshow/internal/game"
	"github.com/lox/wheelshow/internal/wheel"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

// IntentData names an engine intent. Letter is used by pick_letter and Text
// by attempt_solve.
type IntentData struct {
	Name   string `json:"name"`
	Letter string `json:"letter,omitempty"`
	Text   string `json:"text,omitempty"`
}

// SpinCompleteData reports where a renderer's wheel stopped.
type SpinCompleteData struct {
	Token uint64 `json:"token"`
	Wedge int    `json:"wedge"`
}

// Server → Client Messages

type HelloData struct {
	GameID string        `json:"gameId"`
	Wedges []wheel.Wedge `json:"wedges"`
}

type SpinData struct {
	Token  uint64 `json:"token"`
	Player int    `json:"player"`
}

type RejectedData struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
	Phase  string `json:"phase"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// stateMessage wraps a snapshot with the phrase masked for the round in
// progress.
func stateMessage(s game.State) (*Message, error) {
	return NewMessage(MessageTypeState, s.Public())
}
