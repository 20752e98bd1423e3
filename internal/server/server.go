// Package server bridges the engine to external renderers and UIs over
// WebSocket.
//
// Every client receives a hello with the wheel layout, then a masked state
// snapshot after each accepted intent. Clients send intents and report where
// the wheel stopped. While no client is connected an automatic renderer lands
// spins so computer players can keep playing.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/wheelshow/internal/game"
	"github.com/lox/wheelshow/internal/renderer"
)

// Server represents the WebSocket server
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	runOnce     sync.Once

	engine      *game.Engine
	fallback    *renderer.Auto
	unsubscribe func()
}

// NewServer creates a new WebSocket server for engine. fallback may be nil.
func NewServer(addr string, engine *game.Engine, fallback *renderer.Auto, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			// Renderers are usually served from a different origin
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		engine:      engine,
		fallback:    fallback,
	}
	s.unsubscribe = engine.Subscribe(s)
	return s
}

// Handler returns the HTTP handler serving /ws and /health.
func (s *Server) Handler() http.Handler {
	s.runOnce.Do(func() { go s.run() })

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting WebSocket server", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.Stop()
	return srv.Shutdown(shutdownCtx)
}

// Stop stops the WebSocket server
func (s *Server) Stop() error {
	s.cancel()
	s.unsubscribe()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.updateFallback(total)
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			delete(s.connections, conn)
			total := len(s.connections)
			s.mu.Unlock()
			s.updateFallback(total)
			_ = conn.Close()
			s.logger.Info("Client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// updateFallback hands spins to the automatic renderer while nobody is
// connected to draw them. A spin left outstanding by the last client to
// leave is landed by the fallback.
func (s *Server) updateFallback(clients int) {
	if s.fallback == nil {
		return
	}
	s.fallback.SetEnabled(clients == 0)
	if clients > 0 {
		return
	}
	if snap := s.engine.Snapshot(); snap.Phase == game.Spin {
		s.logger.Info("Landing spin abandoned by renderer", "token", snap.SpinToken)
		s.fallback.Land(snap.SpinToken)
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s.engine)
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		_ = client.Close()
		return
	}
	client.Start()

	hello, err := NewMessage(MessageTypeHello, HelloData{
		GameID: s.engine.GameID(),
		Wedges: s.engine.Wedges(),
	})
	if err == nil {
		_ = client.SendMessage(hello)
	}
	if state, err := stateMessage(s.engine.Snapshot()); err == nil {
		_ = client.SendMessage(state)
	}

	go func() {
		<-client.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// OnEvent implements game.Subscriber by forwarding state and spin requests
// to every client.
func (s *Server) OnEvent(ev game.Event) {
	var (
		msg *Message
		err error
	)
	switch e := ev.(type) {
	case game.StateChanged:
		msg, err = stateMessage(e.State)
	case game.SpinRequested:
		msg, err = NewMessage(MessageTypeSpin, SpinData{Token: e.Token, Player: e.Player})
	default:
		return
	}
	if err != nil {
		s.logger.Error("Failed to encode message", "event", ev.EventType(), "error", err)
		return
	}
	s.Broadcast(msg)
}

// Broadcast sends a message to every connected client.
func (s *Server) Broadcast(msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Debug("Failed to send message to client", "error", err)
		} else {
			count++
		}
	}

	s.logger.Debug("Broadcast message", "type", msg.Type, "recipients", count)
}

// ConnectionCount returns the number of connected clients.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}
