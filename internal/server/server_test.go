package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wheelshow/internal/game"
	"github.com/lox/wheelshow/internal/phrases"
	"github.com/lox/wheelshow/internal/randutil"
	"github.com/lox/wheelshow/internal/renderer"
)

type wireState struct {
	Phase     string `json:"phase"`
	SpinToken uint64 `json:"spinToken"`
	Board     struct {
		Phrase   string `json:"phrase"`
		Revealed string `json:"revealed"`
	} `json:"board"`
	Players []struct {
		Name      string `json:"name"`
		RoundBank int    `json:"roundBank"`
	} `json:"players"`
}

type testBridge struct {
	engine   *game.Engine
	server   *Server
	fallback *renderer.Auto
	http     *httptest.Server
}

func newTestBridge(t *testing.T) *testBridge {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	bank, err := phrases.New([]phrases.Entry{{Category: "THING", Text: "CAT"}})
	require.NoError(t, err)

	engine := game.NewEngine(randutil.New(1),
		game.WithRoster([]game.Seat{{Name: "Pat", Type: game.Human}, {Name: "Sam", Type: game.Human}}),
		game.WithPhraseBank(bank),
	)
	fallback := renderer.NewAuto(engine, randutil.New(2), quartz.NewReal(), 0, logger)
	engine.Subscribe(fallback)

	srv := NewServer("127.0.0.1:0", engine, fallback, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Stop()
		ts.Close()
	})
	return &testBridge{engine: engine, server: srv, fallback: fallback, http: ts}
}

func (b *testBridge) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(b.http.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ MessageType, data any) {
	t.Helper()
	msg, err := NewMessage(typ, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil reads messages until one of type typ arrives and match accepts
// it.
func readUntil(t *testing.T, conn *websocket.Conn, typ MessageType, match func(json.RawMessage) bool) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == typ && (match == nil || match(msg.Data)) {
			return msg.Data
		}
	}
}

func statePhase(t *testing.T, phase string) func(json.RawMessage) bool {
	return func(data json.RawMessage) bool {
		var s wireState
		require.NoError(t, json.Unmarshal(data, &s))
		return s.Phase == phase
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t)

	resp, err := http.Get(b.http.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestHelloAndInitialState(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t)
	conn := b.dial(t)

	var hello HelloData
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MessageTypeHello, nil), &hello))
	assert.Equal(t, b.engine.GameID(), hello.GameID)
	assert.Len(t, hello.Wedges, 24)

	var s wireState
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MessageTypeState, nil), &s))
	assert.Equal(t, "title", s.Phase)
}

func TestIntentsAndSpinRoundTrip(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t)
	conn := b.dial(t)
	readUntil(t, conn, MessageTypeHello, nil)
	require.Eventually(t, func() bool { return !b.fallback.Enabled() }, 5*time.Second, 10*time.Millisecond,
		"a connected client takes over rendering")

	send(t, conn, MessageTypeIntent, IntentData{Name: "start_game"})
	readUntil(t, conn, MessageTypeState, statePhase(t, "turn_human"))

	send(t, conn, MessageTypeIntent, IntentData{Name: "spin_wheel"})
	var spin SpinData
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MessageTypeSpin, nil), &spin))
	assert.Equal(t, uint64(1), spin.Token)

	send(t, conn, MessageTypeSpinComplete, SpinCompleteData{Token: spin.Token, Wedge: 0})
	readUntil(t, conn, MessageTypeState, statePhase(t, "await_consonant"))

	send(t, conn, MessageTypeIntent, IntentData{Name: "pick_letter", Letter: "t"})
	data := readUntil(t, conn, MessageTypeState, statePhase(t, "await_action"))

	var s wireState
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, "__T", s.Board.Phrase, "the phrase is masked mid-round")
	assert.Equal(t, 500, s.Players[0].RoundBank)

	send(t, conn, MessageTypeIntent, IntentData{Name: "attempt_solve", Text: "cat"})
	data = readUntil(t, conn, MessageTypeState, statePhase(t, "round_end"))
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, "CAT", s.Board.Phrase)
}

func TestRejectedIntent(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t)
	conn := b.dial(t)
	readUntil(t, conn, MessageTypeHello, nil)

	send(t, conn, MessageTypeIntent, IntentData{Name: "buy_vowel"})
	var rej RejectedData
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MessageTypeRejected, nil), &rej))
	assert.Equal(t, RejectedData{Action: "buy_vowel", Reason: "wrong_phase", Phase: "title"}, rej)

	send(t, conn, MessageTypeSpinComplete, SpinCompleteData{Token: 9, Wedge: 0})
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MessageTypeRejected, nil), &rej))
	assert.Equal(t, "stale_spin", rej.Reason)
	assert.Equal(t, game.Title, b.engine.Snapshot().Phase)
}

func TestMalformedMessages(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t)
	conn := b.dial(t)
	readUntil(t, conn, MessageTypeHello, nil)

	tests := []struct {
		typ  MessageType
		data any
		code string
	}{
		{"dance", nil, "unknown_message_type"},
		{MessageTypeIntent, IntentData{Name: "bribe_host"}, "unknown_intent"},
		{MessageTypeIntent, IntentData{Name: "pick_letter", Letter: "TS"}, "invalid_letter"},
		{MessageTypeIntent, "not an object", "invalid_message"},
	}
	for _, tt := range tests {
		send(t, conn, tt.typ, tt.data)
		var e ErrorData
		require.NoError(t, json.Unmarshal(readUntil(t, conn, MessageTypeError, nil), &e))
		assert.Equal(t, tt.code, e.Code)
	}
}

func TestFallbackRendersWhileNobodyIsConnected(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t)
	conn := b.dial(t)
	readUntil(t, conn, MessageTypeHello, nil)
	require.Eventually(t, func() bool { return b.server.ConnectionCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return b.server.ConnectionCount() == 0 }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, b.fallback.Enabled())

	require.NoError(t, b.engine.StartGame())
	require.NoError(t, b.engine.SpinWheel())
	assert.NotEqual(t, game.Spin, b.engine.Snapshot().Phase)
}

func TestFallbackLandsSpinLeftByDepartingRenderer(t *testing.T) {
	t.Parallel()
	b := newTestBridge(t)
	conn := b.dial(t)
	readUntil(t, conn, MessageTypeHello, nil)
	require.Eventually(t, func() bool { return b.server.ConnectionCount() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.False(t, b.fallback.Enabled())

	require.NoError(t, b.engine.StartGame())
	require.NoError(t, b.engine.SpinWheel())
	require.Equal(t, game.Spin, b.engine.Snapshot().Phase)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return b.engine.Snapshot().Phase != game.Spin }, 5*time.Second, 10*time.Millisecond)

	s := b.engine.Snapshot()
	assert.Equal(t, uint64(1), s.SpinToken)
	assert.Contains(t, []game.Phase{game.AwaitConsonant, game.TurnHuman}, s.Phase)
	if s.Phase == game.TurnHuman {
		assert.NoError(t, b.engine.SpinWheel(), "the next player can spin again")
	} else {
		assert.NoError(t, b.engine.PickLetter('T'))
	}
}
