package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/wheelshow/internal/game"
)

// Connection represents a WebSocket connection to a renderer or UI
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	engine    *game.Engine
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, engine *game.Engine) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		logger: logger.WithPrefix("conn").With("remote", conn.RemoteAddr().String()),
		ctx:    ctx,
		cancel: cancel,
		engine: engine,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client without blocking.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = errors.New("connection closed")

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeIntent:
		var data IntentData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse intent data")
			return
		}
		c.handleIntent(data)

	case MessageTypeSpinComplete:
		var data SpinCompleteData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse spin complete data")
			return
		}
		c.reply(c.engine.OnSpinComplete(data.Token, data.Wedge))

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleIntent(data IntentData) {
	var err error
	switch game.Action(data.Name) {
	case game.ActionStartGame:
		err = c.engine.StartGame()
	case game.ActionSpinWheel:
		err = c.engine.SpinWheel()
	case game.ActionPickLetter:
		letter, size := utf8.DecodeRuneInString(data.Letter)
		if size == 0 || size != len(data.Letter) {
			c.sendError("invalid_letter", "pick_letter needs exactly one letter")
			return
		}
		err = c.engine.PickLetter(letter)
	case game.ActionBuyVowel:
		err = c.engine.BuyVowel()
	case game.ActionAttemptSolve:
		err = c.engine.AttemptSolve(data.Text)
	case game.ActionNextRound:
		err = c.engine.NextRound()
	case game.ActionRestart:
		err = c.engine.Restart()
	default:
		c.sendError("unknown_intent", "Unknown intent: "+data.Name)
		return
	}
	c.reply(err)
}

// reply tells the client why an intent was turned away. Accepted intents
// need no reply; the resulting state is broadcast to everyone.
func (c *Connection) reply(err error) {
	if err == nil {
		return
	}

	var rej *game.Rejection
	if errors.As(err, &rej) {
		c.logger.Debug("Intent rejected", "action", rej.Action, "reason", rej.Reason)
		msg, merr := NewMessage(MessageTypeRejected, RejectedData{
			Action: string(rej.Action),
			Reason: string(rej.Reason),
			Phase:  rej.Phase.String(),
		})
		if merr == nil {
			_ = c.SendMessage(msg)
		}
		return
	}
	c.sendError("intent_failed", err.Error())
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}
