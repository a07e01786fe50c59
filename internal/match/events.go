package match

import (
	"sync/atomic"

	"github.com/andrewkomo/moon-chess/internal/game"
)

// EventKind names the operation that changed a game.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventMove    EventKind = "move"
	EventResign  EventKind = "resign"
	EventDraw    EventKind = "draw"
	EventTimeout EventKind = "timeout"
)

// Event is published after every saved change. Game is a private copy.
type Event struct {
	Kind EventKind
	Game *game.Game
}

// Subscription receives the events of one game. Events are dropped when the
// buffer is full rather than blocking the writer.
type Subscription struct {
	C       <-chan Event
	ch      chan Event
	id      string
	dropped uint64
}

// Dropped returns how many events did not fit in the buffer.
func (s *Subscription) Dropped() uint64 {
	return atomic.LoadUint64(&s.dropped)
}

// Subscribe registers for changes to game id. Call Unsubscribe when done.
func (m *Manager) Subscribe(id string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	sub := &Subscription{C: ch, ch: ch, id: id}

	m.subsMu.Lock()
	set, ok := m.subs[id]
	if !ok {
		set = make(map[*Subscription]struct{})
		m.subs[id] = set
	}
	set[sub] = struct{}{}
	m.subsMu.Unlock()
	return sub
}

// Unsubscribe removes sub and closes its channel.
func (m *Manager) Unsubscribe(sub *Subscription) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	set, ok := m.subs[sub.id]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.ch)
	if len(set) == 0 {
		delete(m.subs, sub.id)
	}
}

func (m *Manager) publish(ev Event) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for sub := range m.subs[ev.Game.ID] {
		select {
		case sub.ch <- ev:
		default:
			atomic.AddUint64(&sub.dropped, 1)
		}
	}
}
