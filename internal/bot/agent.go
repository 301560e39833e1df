package bot

import (
	"math/rand"

	"truco/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Act asks the agent for its next move in view. The agent only acts on its
// own turn or when its team owes an answer to a truco call.
func (a *Agent) Act(view domain.View) (Move, bool) {
	if !NeedsAction(view) {
		return Move{}, false
	}
	return a.Strategy.Decide(view)
}

// NeedsAction reports whether the viewing seat is expected to act.
func NeedsAction(view domain.View) bool {
	switch view.Phase {
	case domain.PhaseBiddingOpen:
		return view.Truco.AwaitingMyResponse
	case domain.PhaseTrickInProgress:
		return view.Turn == view.Seat && len(view.Hand) > 0
	default:
		return false
	}
}

// Delay returns a random think time in [min, max] seconds.
func Delay(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return rng.Intn(max-min+1) + min
}
