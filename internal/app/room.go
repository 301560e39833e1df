package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"truco/internal/domain"
	"truco/internal/ports"
)

var (
	ErrUnknownPlayer = fmt.Errorf("%w: player is not seated in this room", domain.ErrNotAllowed)
	ErrRoomNotFound  = fmt.Errorf("%w: room not found", domain.ErrNotAllowed)
	ErrRoomClosed    = errors.New("room closed")
)

// Identity is who is asking for a seat.
type Identity struct {
	UserID   string
	Username string
	Bot      bool
}

// Player is an occupied seat.
type Player struct {
	Identity
	Seat      int
	Connected bool
}

// RoomConfig carries the per-room settings.
type RoomConfig struct {
	Rules domain.Rules
	// Rand drives shuffling; a time-seeded source is used when nil.
	Rand *rand.Rand
	// Deal overrides dealing. Tests use it to stack hands.
	Deal domain.DealFunc
	// Now stamps game results; time.Now when nil.
	Now func() time.Time
}

// Room owns one table: its seats and its game. A Room is not safe for
// concurrent use; callers serialize access (a Nakama match loop or a Session).
type Room struct {
	ID    string
	seats [domain.SeatCount]*Player
	game  *domain.Game
	now   func() time.Time
}

// NewRoom creates an empty room.
func NewRoom(id string, cfg RoomConfig) *Room {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := domain.NewGame(cfg.Rules, rng)
	g.Deal = cfg.Deal
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Room{ID: id, game: g, now: now}
}

// Phase returns the game phase.
func (r *Room) Phase() domain.Phase {
	return r.game.Phase
}

// Game exposes the game state for read-only inspection.
func (r *Room) Game() *domain.Game {
	return r.game
}

// Players returns the occupied seats in seat order.
func (r *Room) Players() []Player {
	out := make([]Player, 0, domain.SeatCount)
	for _, p := range r.seats {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// PlayerAt returns the occupant of seat.
func (r *Room) PlayerAt(seat int) (Player, bool) {
	if seat < 0 || seat >= domain.SeatCount || r.seats[seat] == nil {
		return Player{}, false
	}
	return *r.seats[seat], true
}

// SeatOf returns the seat held by userID.
func (r *Room) SeatOf(userID string) (int, bool) {
	for i, p := range r.seats {
		if p != nil && p.UserID == userID {
			return i, true
		}
	}
	return -1, false
}

// SeatedCount returns the number of occupied seats.
func (r *Room) SeatedCount() int {
	n := 0
	for _, p := range r.seats {
		if p != nil {
			n++
		}
	}
	return n
}

// ConnectedHumans returns the number of seated humans with a live connection.
func (r *Room) ConnectedHumans() int {
	n := 0
	for _, p := range r.seats {
		if p != nil && p.Connected && !p.Bot {
			n++
		}
	}
	return n
}

// Join seats a player in the lowest free seat. A user who already holds a
// seat gets it back and is marked connected again.
func (r *Room) Join(id Identity) (int, []Event, error) {
	if id.UserID == "" {
		return -1, nil, fmt.Errorf("%w: empty user id", domain.ErrNotAllowed)
	}
	if seat, ok := r.SeatOf(id.UserID); ok {
		p := r.seats[seat]
		p.Connected = true
		if id.Username != "" {
			p.Username = id.Username
		}
		events := []Event{{
			Kind:    EventPlayerJoined,
			Payload: PlayerJoinedPayload{UserID: p.UserID, Username: p.Username, Seat: seat, Rejoined: true},
		}}
		return seat, append(events, r.snapshots()...), nil
	}

	seat := -1
	for i, p := range r.seats {
		if p == nil {
			seat = i
			break
		}
	}
	if seat == -1 {
		return -1, nil, domain.ErrRoomFull
	}

	r.seats[seat] = &Player{Identity: id, Seat: seat, Connected: true}
	events := []Event{{
		Kind:    EventPlayerJoined,
		Payload: PlayerJoinedPayload{UserID: id.UserID, Username: id.Username, Seat: seat},
	}}
	return seat, append(events, r.snapshots()...), nil
}

// Leave releases the player's seat before a game starts. Once a game is
// under way the seat is kept and only marked disconnected.
func (r *Room) Leave(userID string) ([]Event, error) {
	seat, ok := r.SeatOf(userID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if r.game.Phase != domain.PhaseNotStarted {
		return r.Disconnected(userID)
	}
	r.seats[seat] = nil
	events := []Event{{
		Kind:    EventPlayerLeft,
		Payload: PlayerLeftPayload{UserID: userID, Seat: seat},
	}}
	return append(events, r.snapshots()...), nil
}

// Disconnected flags the player's connection as lost. Game state is untouched.
func (r *Room) Disconnected(userID string) ([]Event, error) {
	seat, ok := r.SeatOf(userID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	r.seats[seat].Connected = false
	events := []Event{{
		Kind:    EventPlayerLeft,
		Payload: PlayerLeftPayload{UserID: userID, Seat: seat, Disconnected: true},
	}}
	return append(events, r.snapshots()...), nil
}

// Replace hands a seat to a new identity, keeping its cards.
func (r *Room) Replace(seat int, id Identity) ([]Event, error) {
	if seat < 0 || seat >= domain.SeatCount || r.seats[seat] == nil {
		return nil, fmt.Errorf("%w: seat %d is empty", domain.ErrNotAllowed, seat)
	}
	if _, taken := r.SeatOf(id.UserID); taken {
		return nil, fmt.Errorf("%w: %s already seated", domain.ErrNotAllowed, id.UserID)
	}
	prev := r.seats[seat]
	r.seats[seat] = &Player{Identity: id, Seat: seat, Connected: true}
	events := []Event{
		{Kind: EventPlayerLeft, Payload: PlayerLeftPayload{UserID: prev.UserID, Seat: seat}},
		{Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{UserID: id.UserID, Username: id.Username, Seat: seat}},
	}
	return append(events, r.snapshots()...), nil
}

// StartRound deals the first hand once all four seats are taken.
func (r *Room) StartRound(userID string) ([]Event, error) {
	if _, ok := r.SeatOf(userID); !ok {
		return nil, ErrUnknownPlayer
	}
	if r.game.Phase != domain.PhaseNotStarted {
		return nil, fmt.Errorf("%w: game already in progress", domain.ErrNotAllowed)
	}
	if n := r.SeatedCount(); n < MinPlayersToStartGame {
		return nil, fmt.Errorf("%w: %d of %d seats taken", domain.ErrNotEnoughPlayers, n, MinPlayersToStartGame)
	}
	if err := r.game.Start(); err != nil {
		return nil, err
	}
	events := []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{Dealer: r.game.Round.Dealer, Turn: r.game.Round.Turn},
	}}
	return append(events, r.snapshots()...), nil
}

// PlayCard plays the card at cardIndex of the player's hand.
func (r *Room) PlayCard(userID string, cardIndex int, hidden bool) ([]Event, error) {
	return r.act(userID, func(seat int) error {
		return r.game.PlayCard(seat, cardIndex, hidden)
	})
}

// CallTruco opens a truco call for the player's team.
func (r *Room) CallTruco(userID string) ([]Event, error) {
	return r.act(userID, r.game.CallTruco)
}

// RespondTruco answers a pending truco call for the player's team.
func (r *Room) RespondTruco(userID string, resp domain.Response) ([]Event, error) {
	return r.act(userID, func(seat int) error {
		return r.game.RespondTruco(seat, resp)
	})
}

// RequestNewRound deals the next hand after a paused round, or resets a
// finished game.
func (r *Room) RequestNewRound(userID string) ([]Event, error) {
	return r.act(userID, func(int) error {
		return r.game.NextRound()
	})
}

// act runs a seated player's game action and collects the resulting events.
func (r *Room) act(userID string, fn func(seat int) error) ([]Event, error) {
	seat, ok := r.SeatOf(userID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	last := r.game.LastRound
	if err := fn(seat); err != nil {
		return nil, err
	}

	var events []Event
	if r.game.LastRound != nil && r.game.LastRound != last {
		events = append(events, Event{
			Kind:    EventRoundEnded,
			Payload: RoundEndedPayload{Summary: *r.game.LastRound, Scores: r.game.Score.Scores()},
		})
		if r.game.Phase == domain.PhaseGameOver {
			events = append(events, Event{
				Kind:    EventGameEnded,
				Payload: GameEndedPayload{Result: r.Result()},
			})
		}
	}
	return append(events, r.snapshots()...), nil
}

// Result summarizes the current game for the results port.
func (r *Room) Result() ports.GameResult {
	res := ports.GameResult{
		RoomID:     r.ID,
		WinnerTeam: int(r.game.GameWinner),
		Scores:     r.game.Score.Scores(),
		Hands:      r.game.HandNumber,
		FinishedAt: r.now().UTC(),
	}
	for _, p := range r.Players() {
		res.Players = append(res.Players, ports.ResultPlayer{
			UserID:   p.UserID,
			Username: p.Username,
			Seat:     p.Seat,
			Team:     int(domain.TeamOf(p.Seat)),
			Bot:      p.Bot,
		})
	}
	return res
}

// snapshots builds one private snapshot event per connected seat.
func (r *Room) snapshots() []Event {
	events := make([]Event, 0, domain.SeatCount)
	for seat, p := range r.seats {
		if p == nil || !p.Connected {
			continue
		}
		events = append(events, Event{
			Kind:       EventSnapshot,
			Payload:    r.snapshotFor(seat),
			Recipients: []string{p.UserID},
		})
	}
	return events
}
