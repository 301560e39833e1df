package domain

// Phase represents the lifecycle stage of a Truco game.
// Dealing and round resolution happen inside a single action and are never
// observable between actions.
type Phase string

const (
	// PhaseNotStarted is the pre-game state where players take seats.
	PhaseNotStarted Phase = "not_started"
	// PhaseTrickInProgress accepts card plays and truco calls from the seat in turn.
	PhaseTrickInProgress Phase = "trick_in_progress"
	// PhaseBiddingOpen suspends card play until the pending truco call is answered.
	PhaseBiddingOpen Phase = "bidding_open"
	// PhaseRoundOver waits for a new-round request before dealing the next hand.
	PhaseRoundOver Phase = "round_over"
	// PhaseGameOver freezes the game until a new game is requested.
	PhaseGameOver Phase = "game_over"
)

// Rules are the per-room game settings.
type Rules struct {
	TargetScore int
	// AutoDeal deals the next hand as soon as a round is scored instead of
	// waiting in PhaseRoundOver for a new-round request.
	AutoDeal bool
}

// DefaultRules returns the standard settings.
func DefaultRules() Rules {
	return Rules{TargetScore: DefaultTargetScore, AutoDeal: true}
}

// Round is the state of one dealt hand.
type Round struct {
	Number    int // 1-based hand number within the game
	Dealer    int
	Indicator Card
	Value     int
	Tricks    []Trick // resolved tricks followed by the open one, if any
	Turn      int
	Truco     Truco
	Winner    Team
	Decided   bool
}

// CurrentTrick returns the open trick, or nil once the round is decided.
func (r *Round) CurrentTrick() *Trick {
	if len(r.Tricks) == 0 {
		return nil
	}
	t := &r.Tricks[len(r.Tricks)-1]
	if t.Resolved {
		return nil
	}
	return t
}

// ResolvedTricks returns the tricks that already have a result.
func (r *Round) ResolvedTricks() []Trick {
	out := make([]Trick, 0, len(r.Tricks))
	for _, t := range r.Tricks {
		if t.Resolved {
			out = append(out, t)
		}
	}
	return out
}

// RoundSummary describes how a finished round was scored.
type RoundSummary struct {
	Number   int  `json:"number"`
	Winner   Team `json:"winner"`
	Points   int  `json:"points"`
	Declined bool `json:"declined"`
	Draw     bool `json:"draw"`
}
