package app

import (
	"context"
	"sync"
)

// Sink receives the events of applied actions, in apply order.
type Sink interface {
	Deliver(roomID string, events []Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(roomID string, events []Event)

func (f SinkFunc) Deliver(roomID string, events []Event) { f(roomID, events) }

// Sinks delivers to every sink in order.
type Sinks []Sink

func (s Sinks) Deliver(roomID string, events []Event) {
	for _, sink := range s {
		if sink != nil {
			sink.Deliver(roomID, events)
		}
	}
}

type result struct {
	events []Event
	err    error
}

type action struct {
	apply func(*Room) ([]Event, error)
	reply chan result
}

// Session runs one Room on its own goroutine. Actions are applied one at a
// time in arrival order and their events reach the sink from that goroutine.
type Session struct {
	room    *Room
	sink    Sink
	actions chan action
	done    chan struct{}
	once    sync.Once
}

// NewSession starts the goroutine serving room. sink may be nil.
func NewSession(room *Room, sink Sink) *Session {
	s := &Session{
		room:    room,
		sink:    sink,
		actions: make(chan action),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// RoomID returns the id of the served room.
func (s *Session) RoomID() string {
	return s.room.ID
}

func (s *Session) run() {
	for {
		select {
		case <-s.done:
			return
		case a := <-s.actions:
			select {
			case <-s.done:
				a.reply <- result{err: ErrRoomClosed}
				return
			default:
			}
			events, err := a.apply(s.room)
			if err == nil && len(events) > 0 && s.sink != nil {
				s.sink.Deliver(s.room.ID, events)
			}
			a.reply <- result{events: events, err: err}
		}
	}
}

// Do applies fn to the room on the session goroutine and waits for it.
func (s *Session) Do(ctx context.Context, fn func(*Room) ([]Event, error)) ([]Event, error) {
	a := action{apply: fn, reply: make(chan result, 1)}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrRoomClosed
	case s.actions <- a:
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-a.reply:
		return res.events, res.err
	}
}

// Close stops the session goroutine. Pending and later calls get ErrRoomClosed.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}
