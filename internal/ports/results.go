package ports

import (
	"context"
	"time"
)

// ResultPlayer is one seat's line in a finished game.
type ResultPlayer struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Seat     int    `json:"seat"`
	Team     int    `json:"team"`
	Bot      bool   `json:"bot"`
}

// GameResult summarizes a finished Truco game.
type GameResult struct {
	RoomID     string         `json:"room_id"`
	WinnerTeam int            `json:"winner_team"`
	Scores     [2]int         `json:"scores"`
	Hands      int            `json:"hands"`
	Players    []ResultPlayer `json:"players"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Winners returns the human players on the winning team.
func (r GameResult) Winners() []ResultPlayer {
	out := make([]ResultPlayer, 0, 2)
	for _, p := range r.Players {
		if p.Team == r.WinnerTeam && !p.Bot {
			out = append(out, p)
		}
	}
	return out
}

// ResultsPort records finished games.
type ResultsPort interface {
	// RecordGameResult persists or publishes a finished game.
	// Implementations must be safe to call from a match loop; failures are
	// reported to the caller and never retried.
	RecordGameResult(ctx context.Context, result GameResult) error
}
