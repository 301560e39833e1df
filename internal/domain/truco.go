package domain

import "fmt"

// TrucoPhase is the state of the truco negotiation.
type TrucoPhase string

const (
	TrucoNone      TrucoPhase = "none"
	TrucoRequested TrucoPhase = "requested"
)

// Response is a team's answer to a pending truco call.
type Response string

const (
	ResponseAccept  Response = "accept"
	ResponseDecline Response = "decline"
	ResponseRaise   Response = "raise"
)

// Valid reports whether r is one of the three known responses.
func (r Response) Valid() bool {
	switch r {
	case ResponseAccept, ResponseDecline, ResponseRaise:
		return true
	}
	return false
}

// MaxRoundValue is the highest stake a round can reach.
const MaxRoundValue = 12

var nextRoundValue = map[int]int{1: 3, 3: 6, 6: 9, 9: 12}

// NextRoundValue returns the stake proposed by a call made at value v.
func NextRoundValue(v int) (int, bool) {
	next, ok := nextRoundValue[v]
	return next, ok
}

// Truco tracks the bidding for one round.
type Truco struct {
	Phase          TrucoPhase
	CallingTeam    Team
	RespondingTeam Team
	PendingValue   int
	// LockedTeam made the last accepted proposal and may not call again
	// until the other team raises.
	LockedTeam Team
}

// NewTruco returns the bidding state at the start of a round.
func NewTruco() Truco {
	return Truco{
		Phase:          TrucoNone,
		CallingTeam:    NoTeam,
		RespondingTeam: NoTeam,
		LockedTeam:     NoTeam,
	}
}

// Open reports whether a negotiation is waiting for an answer.
func (t *Truco) Open() bool {
	return t.Phase == TrucoRequested
}

// CanCall checks whether team may open a negotiation at the given round value.
func (t *Truco) CanCall(team Team, roundValue int) error {
	if t.Open() {
		return fmt.Errorf("%w: a truco call is already pending", ErrIllegalBid)
	}
	if roundValue >= MaxRoundValue {
		return fmt.Errorf("%w: round is already worth %d", ErrIllegalBid, MaxRoundValue)
	}
	if team == t.LockedTeam {
		return fmt.Errorf("%w: team %d holds the last accepted raise", ErrIllegalBid, team)
	}
	if _, ok := NextRoundValue(roundValue); !ok {
		return fmt.Errorf("%w: no stake follows %d", ErrIllegalBid, roundValue)
	}
	return nil
}

// Call opens a negotiation for team. Callers validate with CanCall first.
func (t *Truco) Call(team Team, roundValue int) {
	next, _ := NextRoundValue(roundValue)
	t.Phase = TrucoRequested
	t.CallingTeam = team
	t.RespondingTeam = team.Other()
	t.PendingValue = next
}

// CanRespond checks whether team may answer the pending call with r.
func (t *Truco) CanRespond(team Team, r Response) error {
	if !r.Valid() {
		return fmt.Errorf("%w: unknown response %q", ErrIllegalBid, r)
	}
	if !t.Open() {
		return fmt.Errorf("%w: no pending truco call", ErrIllegalBid)
	}
	if team != t.RespondingTeam {
		return fmt.Errorf("%w: team %d is not the responding team", ErrIllegalBid, team)
	}
	if r == ResponseRaise {
		if _, ok := NextRoundValue(t.PendingValue); !ok {
			return fmt.Errorf("%w: cannot raise past %d", ErrIllegalBid, t.PendingValue)
		}
	}
	return nil
}

// Outcome is the effect of an answer on the round.
type Outcome struct {
	RoundValue int  // stake in effect after the answer
	Declined   bool // round ends for Winner at RoundValue
	Winner     Team
}

// Respond applies an answer validated by CanRespond. roundValue is the stake in
// effect before the pending call. A raise accepts the pending value first, so
// declining the counter-raise pays that value, not the stake before the call.
func (t *Truco) Respond(r Response, roundValue int) Outcome {
	switch r {
	case ResponseDecline:
		winner := t.CallingTeam
		t.close()
		return Outcome{RoundValue: roundValue, Declined: true, Winner: winner}
	case ResponseRaise:
		accepted := t.PendingValue
		next, _ := NextRoundValue(accepted)
		t.CallingTeam, t.RespondingTeam = t.RespondingTeam, t.CallingTeam
		t.PendingValue = next
		t.LockedTeam = NoTeam
		return Outcome{RoundValue: accepted, Winner: NoTeam}
	default:
		accepted := t.PendingValue
		t.LockedTeam = t.CallingTeam
		t.close()
		return Outcome{RoundValue: accepted, Winner: NoTeam}
	}
}

func (t *Truco) close() {
	t.Phase = TrucoNone
	t.CallingTeam = NoTeam
	t.RespondingTeam = NoTeam
	t.PendingValue = 0
}
