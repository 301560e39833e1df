package domain

// Play is one card laid on the table.
type Play struct {
	Seat   int  `json:"seat"`
	Card   Card `json:"card"`
	Hidden bool `json:"hidden"`
}

// Trick is one exchange of plays within a round.
type Trick struct {
	Number     int    // 1-based position within the round
	Opener     int    // seat that led the trick
	Plays      []Play // in play order, at most one per seat
	Resolved   bool
	Draw       bool
	Winner     Team // NoTeam while open or when drawn
	WinnerSeat int  // -1 while open or when drawn
}

// NewTrick opens an empty trick led by opener.
func NewTrick(number, opener int) Trick {
	return Trick{
		Number:     number,
		Opener:     opener,
		Plays:      make([]Play, 0, SeatCount),
		Winner:     NoTeam,
		WinnerSeat: -1,
	}
}

// Complete reports whether every seat has played.
func (t *Trick) Complete() bool {
	return len(t.Plays) == SeatCount
}

// HasPlayed reports whether seat already has a card in this trick.
func (t *Trick) HasPlayed(seat int) bool {
	for _, p := range t.Plays {
		if p.Seat == seat {
			return true
		}
	}
	return false
}

// Resolve determines the trick result from the plays and the hand's indicator.
// A top strength shared across both teams is a draw; shared between partners
// it is a win for their team, credited to the first of them to play it.
func (t *Trick) Resolve(indicator Card) {
	best := -1
	for _, p := range t.Plays {
		if s := StrengthOf(p.Card, indicator); s > best {
			best = s
		}
	}

	winnerSeat := -1
	teams := map[Team]bool{}
	for _, p := range t.Plays {
		if StrengthOf(p.Card, indicator) != best {
			continue
		}
		if winnerSeat == -1 {
			winnerSeat = p.Seat
		}
		teams[TeamOf(p.Seat)] = true
	}

	t.Resolved = true
	if len(teams) > 1 {
		t.Draw = true
		t.Winner = NoTeam
		t.WinnerSeat = -1
		return
	}
	t.Winner = TeamOf(winnerSeat)
	t.WinnerSeat = winnerSeat
}

// DecideRound applies the traditional mathematical-certainty rule to the
// resolved tricks of a round. It returns decided=false while more tricks are
// needed; a decided round with winner NoTeam is a full draw.
func DecideRound(tricks []Trick) (winner Team, decided bool) {
	results := make([]Team, 0, len(tricks))
	draws := make([]bool, 0, len(tricks))
	for _, t := range tricks {
		if !t.Resolved {
			break
		}
		results = append(results, t.Winner)
		draws = append(draws, t.Draw)
	}

	switch len(results) {
	case 0, 1:
		return NoTeam, false
	case 2:
		switch {
		case draws[0] && draws[1]:
			return NoTeam, false
		case draws[1]:
			return results[0], true
		case draws[0]:
			return results[1], true
		case results[0] == results[1]:
			return results[0], true
		default:
			return NoTeam, false
		}
	default:
		if !draws[2] {
			return results[2], true
		}
		if !draws[0] {
			return results[0], true
		}
		return NoTeam, true
	}
}
