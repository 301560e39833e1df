package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"truco/internal/domain"

	"github.com/google/uuid"
)

// Registry owns the sessions of every live room. Rooms are created on first
// join and dropped when no connected human is left.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	rules    domain.Rules
	sink     Sink
	seed     int64

	// NewRoomConfig builds the config of each new room; tests override it.
	NewRoomConfig func(roomID string) RoomConfig
}

// NewRegistry returns an empty registry whose rooms use rules and report to sink.
func NewRegistry(rules domain.Rules, sink Sink) *Registry {
	reg := &Registry{
		sessions: make(map[string]*Session),
		rules:    rules,
		sink:     sink,
		seed:     time.Now().UnixNano(),
	}
	reg.NewRoomConfig = reg.defaultRoomConfig
	return reg
}

// defaultRoomConfig gives each room its own rand source; *rand.Rand is not
// safe for concurrent use. Called with mu held.
func (reg *Registry) defaultRoomConfig(string) RoomConfig {
	reg.seed++
	return RoomConfig{Rules: reg.rules, Rand: rand.New(rand.NewSource(reg.seed))}
}

// CreateRoom opens an empty room with a fresh id.
func (reg *Registry) CreateRoom(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	id := uuid.NewString()
	reg.sessions[id] = NewSession(NewRoom(id, reg.NewRoomConfig(id)), reg.sink)
	return id, nil
}

// JoinRoom seats the player, creating the room on first join.
func (reg *Registry) JoinRoom(ctx context.Context, roomID string, id Identity) (int, error) {
	for attempt := 0; attempt < 2; attempt++ {
		s := reg.getOrCreate(roomID)
		seat := -1
		_, err := s.Do(ctx, func(r *Room) ([]Event, error) {
			var (
				events []Event
				err    error
			)
			seat, events, err = r.Join(id)
			return events, err
		})
		if errors.Is(err, ErrRoomClosed) {
			// Lost a race with the last player leaving; open it again.
			continue
		}
		return seat, err
	}
	return -1, ErrRoomClosed
}

// StartRound deals the first hand.
func (reg *Registry) StartRound(ctx context.Context, roomID, playerID string) error {
	return reg.do(ctx, roomID, func(r *Room) ([]Event, error) {
		return r.StartRound(playerID)
	})
}

// PlayCard plays a card from the player's hand.
func (reg *Registry) PlayCard(ctx context.Context, roomID, playerID string, cardIndex int, hidden bool) error {
	return reg.do(ctx, roomID, func(r *Room) ([]Event, error) {
		return r.PlayCard(playerID, cardIndex, hidden)
	})
}

// CallTruco opens a truco call.
func (reg *Registry) CallTruco(ctx context.Context, roomID, playerID string) error {
	return reg.do(ctx, roomID, func(r *Room) ([]Event, error) {
		return r.CallTruco(playerID)
	})
}

// RespondTruco answers a pending truco call.
func (reg *Registry) RespondTruco(ctx context.Context, roomID, playerID string, resp domain.Response) error {
	return reg.do(ctx, roomID, func(r *Room) ([]Event, error) {
		return r.RespondTruco(playerID, resp)
	})
}

// RequestNewRound deals the next hand or resets a finished game.
func (reg *Registry) RequestNewRound(ctx context.Context, roomID, playerID string) error {
	return reg.do(ctx, roomID, func(r *Room) ([]Event, error) {
		return r.RequestNewRound(playerID)
	})
}

// LeaveRoom removes the player from the room.
func (reg *Registry) LeaveRoom(ctx context.Context, roomID, playerID string) error {
	return reg.departure(ctx, roomID, func(r *Room) ([]Event, error) {
		return r.Leave(playerID)
	})
}

// PlayerDisconnected marks the player's connection as lost.
func (reg *Registry) PlayerDisconnected(ctx context.Context, roomID, playerID string) error {
	return reg.departure(ctx, roomID, func(r *Room) ([]Event, error) {
		return r.Disconnected(playerID)
	})
}

// Snapshot returns the room as seen by the player.
func (reg *Registry) Snapshot(ctx context.Context, roomID, playerID string) (Snapshot, error) {
	s, err := reg.get(roomID)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	_, err = s.Do(ctx, func(r *Room) ([]Event, error) {
		var err error
		snap, err = r.Snapshot(playerID)
		return nil, err
	})
	return snap, err
}

// Rooms returns the ids of the live rooms.
func (reg *Registry) Rooms() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	ids := make([]string, 0, len(reg.sessions))
	for id := range reg.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Close stops every session.
func (reg *Registry) Close() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for id, s := range reg.sessions {
		s.Close()
		delete(reg.sessions, id)
	}
}

func (reg *Registry) do(ctx context.Context, roomID string, fn func(*Room) ([]Event, error)) error {
	s, err := reg.get(roomID)
	if err != nil {
		return err
	}
	_, err = s.Do(ctx, fn)
	return err
}

// departure applies a leave or disconnect and closes the room once nobody
// connected is left in it.
func (reg *Registry) departure(ctx context.Context, roomID string, fn func(*Room) ([]Event, error)) error {
	s, err := reg.get(roomID)
	if err != nil {
		return err
	}
	empty := false
	_, err = s.Do(ctx, func(r *Room) ([]Event, error) {
		events, err := fn(r)
		if err == nil {
			empty = r.ConnectedHumans() == 0
		}
		return events, err
	})
	if err != nil || !empty {
		return err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.sessions[roomID] != s {
		return nil
	}
	// A join may have landed since; look again with new joins locked out.
	_, err = s.Do(ctx, func(r *Room) ([]Event, error) {
		empty = r.ConnectedHumans() == 0
		return nil, nil
	})
	if err == nil && empty {
		delete(reg.sessions, roomID)
		s.Close()
	}
	return nil
}

func (reg *Registry) get(roomID string) (*Session, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s, ok := reg.sessions[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return s, nil
}

func (reg *Registry) getOrCreate(roomID string) *Session {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if s, ok := reg.sessions[roomID]; ok {
		return s
	}
	s := NewSession(NewRoom(roomID, reg.NewRoomConfig(roomID)), reg.sink)
	reg.sessions[roomID] = s
	return s
}
