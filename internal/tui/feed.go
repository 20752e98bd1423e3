package tui

import (
	"sync"

	"github.com/lox/wheelshow/internal/game"
)

// feed buffers engine events for the Bubble Tea loop. OnEvent never blocks,
// so a slow terminal cannot stall the engine.
type feed struct {
	mu     sync.Mutex
	queue  []game.Event
	notify chan struct{}
	closed chan struct{}
	once   sync.Once
}

func newFeed() *feed {
	return &feed{
		notify: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (f *feed) OnEvent(ev game.Event) {
	f.mu.Lock()
	f.queue = append(f.queue, ev)
	f.mu.Unlock()

	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// next blocks until events are queued and returns all of them, or nil once
// the feed is closed.
func (f *feed) next() []game.Event {
	for {
		if evs := f.drain(); len(evs) > 0 {
			return evs
		}
		select {
		case <-f.notify:
		case <-f.closed:
			return nil
		}
	}
}

func (f *feed) drain() []game.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	evs := f.queue
	f.queue = nil
	return evs
}

func (f *feed) close() {
	f.once.Do(func() { close(f.closed) })
}
