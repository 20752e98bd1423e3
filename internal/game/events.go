package game

import (
	"slices"
	"sync"
	"time"

	"github.com/lox/wheelshow/internal/wheel"
)

// EventType represents a game event type with type safety
type EventType string

const (
	EventTypeStateChanged   EventType = "state_changed"
	EventTypeSpinRequested  EventType = "spin_requested"
	EventTypeWedgeLanded    EventType = "wedge_landed"
	EventTypeLetterResolved EventType = "letter_resolved"
	EventTypeTurnPassed     EventType = "turn_passed"
	EventTypeRoundEnded     EventType = "round_ended"
	EventTypeGameEnded      EventType = "game_ended"
)

func (et EventType) String() string {
	return string(et)
}

// Event is anything the engine announces after an accepted action.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// StateChanged is published once per accepted action, after the more
// specific events, with the state as it stands afterwards.
type StateChanged struct {
	Action    Action
	State     State
	timestamp time.Time
}

func (e StateChanged) EventType() EventType { return EventTypeStateChanged }
func (e StateChanged) Timestamp() time.Time { return e.timestamp }

// SpinRequested tells renderers to start animating. Token must be echoed
// back to OnSpinComplete.
type SpinRequested struct {
	Token     uint64
	Player    int
	timestamp time.Time
}

func (e SpinRequested) EventType() EventType { return EventTypeSpinRequested }
func (e SpinRequested) Timestamp() time.Time { return e.timestamp }

// WedgeLanded reports the wedge a spin stopped on.
type WedgeLanded struct {
	Token     uint64
	Index     int
	Wedge     wheel.Wedge
	Player    int
	timestamp time.Time
}

func (e WedgeLanded) EventType() EventType { return EventTypeWedgeLanded }
func (e WedgeLanded) Timestamp() time.Time { return e.timestamp }

// LetterResolved reports a picked letter and what it earned.
type LetterResolved struct {
	Letter    rune
	Kind      PickKind
	Count     int
	Delta     int
	Player    int
	timestamp time.Time
}

func (e LetterResolved) EventType() EventType { return EventTypeLetterResolved }
func (e LetterResolved) Timestamp() time.Time { return e.timestamp }

// TurnPassed reports control moving to another player.
type TurnPassed struct {
	From      int
	To        int
	timestamp time.Time
}

func (e TurnPassed) EventType() EventType { return EventTypeTurnPassed }
func (e TurnPassed) Timestamp() time.Time { return e.timestamp }

// RoundEnded is published when a puzzle is solved.
type RoundEnded struct {
	Round     int
	Winner    int
	Winnings  int
	Phrase    string
	timestamp time.Time
}

func (e RoundEnded) EventType() EventType { return EventTypeRoundEnded }
func (e RoundEnded) Timestamp() time.Time { return e.timestamp }

// GameEnded is published when the last round has been played.
type GameEnded struct {
	Standings []Player
	timestamp time.Time
}

func (e GameEnded) EventType() EventType { return EventTypeGameEnded }
func (e GameEnded) Timestamp() time.Time { return e.timestamp }

// Subscriber receives engine events. OnEvent runs on the goroutine that
// performed the action, after the engine lock is released, so it may call
// back into the engine.
type Subscriber interface {
	OnEvent(event Event)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(Event)

func (f SubscriberFunc) OnEvent(e Event) { f(e) }

// EventBus fans events out to subscribers in subscription order.
type EventBus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers []subscription
}

type subscription struct {
	id int
	s  Subscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe adds a subscriber and returns a function that removes it.
func (bus *EventBus) Subscribe(s Subscriber) (unsubscribe func()) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.nextID++
	id := bus.nextID
	bus.subscribers = append(bus.subscribers, subscription{id: id, s: s})

	return func() {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		bus.subscribers = slices.DeleteFunc(bus.subscribers, func(sub subscription) bool {
			return sub.id == id
		})
	}
}

// Len returns the number of subscribers.
func (bus *EventBus) Len() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subscribers)
}

// Publish delivers event to every current subscriber.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := slices.Clone(bus.subscribers)
	bus.mu.RUnlock()

	for _, sub := range subs {
		sub.s.OnEvent(event)
	}
}
