package app

import (
	"truco/internal/domain"
	"truco/internal/ports"
)

// EventKind identifies emitted room events for adapter dispatch.
type EventKind string

const (
	EventPlayerJoined EventKind = "player_joined"
	EventPlayerLeft   EventKind = "player_left"
	EventGameStarted  EventKind = "game_started"
	EventSnapshot     EventKind = "snapshot"
	EventRoundEnded   EventKind = "round_ended"
	EventGameEnded    EventKind = "game_ended"
)

// Event is a room event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Seat     int    `json:"seat"`
	Rejoined bool   `json:"rejoined"`
}

type PlayerLeftPayload struct {
	UserID string `json:"user_id"`
	Seat   int    `json:"seat"`
	// Disconnected is set when the seat is kept for a rejoin.
	Disconnected bool `json:"disconnected"`
}

type GameStartedPayload struct {
	Dealer int `json:"dealer"`
	Turn   int `json:"turn"`
}

type RoundEndedPayload struct {
	Summary domain.RoundSummary `json:"summary"`
	Scores  [2]int              `json:"scores"`
}

type GameEndedPayload struct {
	Result ports.GameResult `json:"result"`
}
