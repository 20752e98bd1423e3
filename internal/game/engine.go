package game

import (
	"fmt"
	rand "math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/wheelshow/internal/phrases"
	"github.com/lox/wheelshow/internal/wheel"
)

// Scheduler is told when a computer player has to act, and when any work
// it started for an earlier turn is no longer wanted.
type Scheduler interface {
	Schedule(turn TurnRef)
	Cancel()
}

// Engine owns the session state. Every mutation goes through one of its
// intent methods, each of which runs to completion under the engine lock.
type Engine struct {
	mu        sync.Mutex
	state     State
	rng       *rand.Rand
	bank      *phrases.Bank
	logger    *log.Logger
	bus       *EventBus
	scheduler Scheduler

	// Collected while an intent runs and handed to the dispatcher afterwards.
	pending    []Event
	scheduleAI *TurnRef
	cancelAI   bool

	queue       []dispatch
	dispatching bool
}

type dispatch struct {
	events   []Event
	cancel   bool
	schedule *TurnRef
}

// NewEngine creates a session in the Title phase. The RNG is required so
// phrase draws are reproducible under test.
func NewEngine(rng *rand.Rand, opts ...Option) *Engine {
	if rng == nil {
		panic("rng is required for engine creation")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.roster) == 0 {
		panic("at least 1 player required")
	}
	if len(cfg.wedges) == 0 {
		panic("wheel has no wedges")
	}
	if cfg.bank == nil {
		cfg.bank = phrases.Default()
	}
	if cfg.gameID == "" {
		cfg.gameID = newGameID()
	}

	return &Engine{
		rng:       rng,
		bank:      cfg.bank,
		logger:    cfg.logger.WithPrefix("engine"),
		bus:       NewEventBus(),
		scheduler: cfg.scheduler,
		state: State{
			GameID:      cfg.gameID,
			Phase:       Title,
			RoundsTotal: cfg.settings.RoundsTotal,
			Players:     seatPlayers(cfg.roster),
			Wheel:       WheelState{Wedges: slices.Clone(cfg.wedges), LastIndex: -1},
			Settings:    cfg.settings,
		},
	}
}

func newGameID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// SetScheduler attaches the computer-player scheduler.
func (e *Engine) SetScheduler(s Scheduler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scheduler = s
}

// Subscribe registers s for events and returns a function that removes it.
func (e *Engine) Subscribe(s Subscriber) (unsubscribe func()) {
	return e.bus.Subscribe(s)
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Wedges returns the wheel layout renderers should draw.
func (e *Engine) Wedges() []wheel.Wedge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.state.Wheel.Wedges)
}

// GameID returns the session ID.
func (e *Engine) GameID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.GameID
}

// StartGame begins round one from any phase.
func (e *Engine) StartGame() error {
	return e.apply(ActionStartGame, func() error {
		e.cancelAI = true
		e.state.RoundIndex = 0
		e.say("Welcome to the Wheel!")
		e.startRound()
		return nil
	})
}

// SpinWheel asks the renderer for a spin. The outcome arrives through
// OnSpinComplete with the token published in SpinRequested.
func (e *Engine) SpinWheel() error {
	return e.apply(ActionSpinWheel, func() error {
		s := &e.state
		if !s.Phase.ChoosingMove() {
			return ReasonWrongPhase
		}
		if s.Board.Unrevealed().Consonants() == 0 {
			return ReasonNoConsonantsLeft
		}

		s.SpinToken++
		s.Phase = Spin
		e.emit(SpinRequested{Token: s.SpinToken, Player: s.CurrentPlayerIndex, timestamp: time.Now()})
		e.say("%s spins the wheel...", s.CurrentPlayer().Name)
		return nil
	})
}

// OnSpinComplete accepts the wedge a renderer landed on. Only the
// outstanding spin is accepted; late or duplicate deliveries are rejected
// with ReasonStaleSpin.
func (e *Engine) OnSpinComplete(token uint64, wedgeIndex int) error {
	return e.apply(ActionSpinComplete, func() error {
		s := &e.state
		if s.Phase != Spin || token != s.SpinToken {
			return ReasonStaleSpin
		}
		w, ok := wheel.At(s.Wheel.Wedges, wedgeIndex)
		if !ok {
			return ReasonWedgeOutOfRange
		}

		p := &s.Players[s.CurrentPlayerIndex]
		e.emit(WedgeLanded{Token: token, Index: wedgeIndex, Wedge: w, Player: s.CurrentPlayerIndex, timestamp: time.Now()})

		switch w.Kind {
		case wheel.Bankrupt:
			lost := p.RoundBank
			p.RoundBank = 0
			if lost > 0 {
				e.say("BANKRUPT! %s loses %s.", p.Name, money(lost))
			} else {
				e.say("BANKRUPT! Bad luck, %s.", p.Name)
			}
			e.passTurn()
		case wheel.LoseTurn:
			e.say("Lose a turn. Sorry, %s.", p.Name)
			e.passTurn()
		default:
			s.Wheel.LastIndex = wedgeIndex
			s.Wheel.LastResult = w
			s.Phase = AwaitConsonant
			e.say("%s! %s, call a consonant.", w.Label, p.Name)
			if p.IsAI() {
				ref := s.TurnRef()
				e.scheduleAI = &ref
			}
		}
		return nil
	})
}

// PickLetter resolves a consonant after a cash spin, or a vowel after
// BuyVowel.
func (e *Engine) PickLetter(letter rune) error {
	return e.apply(ActionPickLetter, func() error {
		s := &e.state

		var kind PickKind
		switch s.Phase {
		case AwaitConsonant:
			kind = PickConsonant
		case BuyVowel:
			kind = PickVowel
		default:
			return ReasonWrongPhase
		}

		value := 0
		if kind == PickConsonant && s.Wheel.LastResult.IsCash() {
			value = s.Wheel.LastResult.Value
		}
		res, err := Resolve(s.Board, kind, letter, value)
		if err != nil {
			return err
		}

		seat := s.CurrentPlayerIndex
		p := &s.Players[seat]
		s.Board = res.Board
		p.RoundBank += res.Delta
		e.emit(LetterResolved{
			Letter: res.Letter, Kind: kind, Count: res.Count, Delta: res.Delta,
			Player: seat, timestamp: time.Now(),
		})

		switch {
		case res.Count == 0:
			e.say("Sorry, there is no %c.", res.Letter)
		case res.Delta > 0:
			e.say("%s. %s earns %s.", countLine(res.Letter, res.Count), p.Name, money(res.Delta))
		default:
			e.say("%s.", countLine(res.Letter, res.Count))
		}

		switch {
		case res.Solved:
			e.finishRound(seat)
		case res.Count == 0:
			e.passTurn()
		default:
			s.Phase = AwaitAction
			if p.IsAI() {
				ref := s.TurnRef()
				e.scheduleAI = &ref
			}
		}
		return nil
	})
}

// BuyVowel charges the vowel price and waits for the vowel.
func (e *Engine) BuyVowel() error {
	return e.apply(ActionBuyVowel, func() error {
		s := &e.state
		if !s.Phase.ChoosingMove() {
			return ReasonWrongPhase
		}
		p := &s.Players[s.CurrentPlayerIndex]
		if p.RoundBank < s.Settings.VowelPrice {
			return ReasonInsufficientFunds
		}
		if s.Board.Unrevealed().Vowels() == 0 {
			return ReasonNoVowelsLeft
		}

		p.RoundBank -= s.Settings.VowelPrice
		s.Phase = BuyVowel
		e.say("%s buys a vowel for %s.", p.Name, money(s.Settings.VowelPrice))
		return nil
	})
}

// AttemptSolve compares guess with the phrase. The match is
// case-insensitive and runs of whitespace count as one space; anything else
// must match exactly.
func (e *Engine) AttemptSolve(guess string) error {
	return e.apply(ActionAttemptSolve, func() error {
		s := &e.state
		if !s.Phase.ChoosingMove() {
			return ReasonWrongPhase
		}

		seat := s.CurrentPlayerIndex
		if normalizeGuess(guess) == s.Board.Phrase {
			e.finishRound(seat)
			return nil
		}
		e.say("Sorry, %s, that's not it.", s.Players[seat].Name)
		e.passTurn()
		return nil
	})
}

// NextRound moves on from a finished round, ending the game after the last.
func (e *Engine) NextRound() error {
	return e.apply(ActionNextRound, func() error {
		s := &e.state
		if s.Phase != RoundEnd {
			return ReasonWrongPhase
		}

		e.cancelAI = true
		s.RoundIndex++
		if s.RoundIndex >= s.RoundsTotal {
			s.Phase = GameEnd
			standings := s.Standings()
			e.emit(GameEnded{Standings: standings, timestamp: time.Now()})
			e.say("That's the game! %s wins with %s.", standings[0].Name, money(standings[0].TotalBank))
			return nil
		}
		e.startRound()
		return nil
	})
}

// Restart returns the session to Title, clearing every bank.
func (e *Engine) Restart() error {
	return e.apply(ActionRestart, func() error {
		s := &e.state
		e.cancelAI = true
		s.Phase = Title
		s.RoundIndex = 0
		s.CurrentPlayerIndex = 0
		s.Turn++
		for i := range s.Players {
			s.Players[i].RoundBank = 0
			s.Players[i].TotalBank = 0
		}
		s.Board = Board{}
		s.Host.Lines = nil
		s.Wheel.LastIndex = -1
		s.Wheel.LastResult = wheel.Wedge{}
		return nil
	})
}

// apply runs one intent under the lock. A guard failure restores the
// previous state and comes back as a *Rejection.
func (e *Engine) apply(action Action, fn func() error) error {
	e.mu.Lock()
	before := e.state.Clone()

	if err := fn(); err != nil {
		e.state = before
		e.pending, e.scheduleAI, e.cancelAI = nil, nil, false
		e.mu.Unlock()

		reason, ok := err.(Reason)
		if !ok {
			return err
		}
		e.logger.Debug("Intent rejected", "action", action, "phase", before.Phase, "reason", reason)
		return &Rejection{Action: action, Phase: before.Phase, Reason: reason}
	}

	e.emit(StateChanged{Action: action, State: e.state.Clone(), timestamp: time.Now()})
	e.queue = append(e.queue, dispatch{events: e.pending, cancel: e.cancelAI, schedule: e.scheduleAI})
	e.pending, e.scheduleAI, e.cancelAI = nil, nil, false

	e.logger.Debug("Intent applied",
		"action", action,
		"phase", e.state.Phase,
		"player", e.state.CurrentPlayer().Name,
		"round", e.state.RoundIndex)

	if e.dispatching {
		e.mu.Unlock()
		return nil
	}
	e.dispatching = true
	e.mu.Unlock()

	e.drain()
	return nil
}

// drain delivers queued events in intent order. Whichever goroutine finds
// the queue idle delivers for everyone, so a subscriber that calls back into
// the engine has its own events delivered after the current batch.
func (e *Engine) drain() {
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.dispatching = false
			e.mu.Unlock()
			return
		}
		next := e.queue[0]
		e.queue = e.queue[1:]
		scheduler := e.scheduler
		e.mu.Unlock()

		for _, ev := range next.events {
			e.bus.Publish(ev)
		}
		if scheduler == nil {
			continue
		}
		if next.cancel {
			scheduler.Cancel()
		}
		if next.schedule != nil {
			scheduler.Schedule(*next.schedule)
		}
	}
}

func (e *Engine) emit(ev Event) {
	e.pending = append(e.pending, ev)
}

func (e *Engine) say(format string, args ...any) {
	lines := append(e.state.Host.Lines, fmt.Sprintf(format, args...))
	if limit := e.state.Settings.HostLineLimit; limit > 0 && len(lines) > limit {
		lines = slices.Clone(lines[len(lines)-limit:])
	}
	e.state.Host.Lines = lines
}

func (e *Engine) startRound() {
	s := &e.state
	entry := e.bank.Pick(e.rng)
	s.Board = NewBoard(entry)
	for i := range s.Players {
		s.Players[i].RoundBank = 0
	}
	e.say("Round %d of %d. The category is %s.", s.RoundIndex+1, s.RoundsTotal, s.Board.Category)
	e.beginTurn(e.openingSeat())
}

// openingSeat is the first human seat, or seat 0 when every seat is a
// computer.
func (e *Engine) openingSeat() int {
	for i, p := range e.state.Players {
		if !p.IsAI() {
			return i
		}
	}
	return 0
}

// beginTurn hands control to seat, choosing the phase by player type.
func (e *Engine) beginTurn(seat int) {
	s := &e.state
	s.CurrentPlayerIndex = seat
	s.Turn++
	s.Wheel.LastIndex = -1
	s.Wheel.LastResult = wheel.Wedge{}

	p := s.Players[seat]
	if p.IsAI() {
		s.Phase = TurnAI
		ref := s.TurnRef()
		e.scheduleAI = &ref
	} else {
		s.Phase = TurnHuman
	}
	e.say("%s, it's your turn.", p.Name)
}

func (e *Engine) passTurn() {
	from := e.state.CurrentPlayerIndex
	to := (from + 1) % len(e.state.Players)
	e.emit(TurnPassed{From: from, To: to, timestamp: time.Now()})
	e.beginTurn(to)
}

func (e *Engine) finishRound(seat int) {
	s := &e.state
	p := &s.Players[seat]
	p.TotalBank += p.RoundBank
	s.Board = s.Board.RevealAll()
	s.Phase = RoundEnd
	e.emit(RoundEnded{
		Round: s.RoundIndex, Winner: seat, Winnings: p.RoundBank,
		Phrase: s.Board.Phrase, timestamp: time.Now(),
	})
	e.say("That's it! \"%s\". %s banks %s.", s.Board.Phrase, p.Name, money(p.RoundBank))
}

func normalizeGuess(guess string) string {
	return strings.Join(strings.Fields(strings.ToUpper(guess)), " ")
}

func countLine(letter rune, n int) string {
	if n == 1 {
		return fmt.Sprintf("There is one %c", letter)
	}
	return fmt.Sprintf("There are %d %c's", n, letter)
}

// money formats whole dollars with thousands separators.
func money(n int) string {
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	digits := fmt.Sprint(n)
	var sb strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}
	return sign + "$" + sb.String()
}
