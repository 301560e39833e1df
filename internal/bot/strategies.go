package bot

import "truco/internal/domain"

// GoodBot plays the cheapest card that takes the trick and answers truco on
// raw hand strength. It never calls and never plays face-down.
type GoodBot struct{}

func (b *GoodBot) Decide(view domain.View) (Move, bool) {
	if view.Indicator == nil {
		return Move{}, false
	}
	if view.Phase == domain.PhaseBiddingOpen {
		resp := domain.ResponseDecline
		if handScore(view) >= 2 {
			resp = domain.ResponseAccept
		}
		return Move{Kind: MoveRespond, Response: resp}, true
	}
	if len(view.Hand) == 0 {
		return Move{}, false
	}
	idx, _ := chooseCard(view)
	return Move{Kind: MovePlay, CardIndex: idx}, true
}

// SmartBot weighs the hand and the tricks already won before bidding, calls
// truco with two manilhas, and throws losing cards face-down.
type SmartBot struct {
	AcceptScore int
	RaiseScore  int
}

func (b *SmartBot) Decide(view domain.View) (Move, bool) {
	if view.Indicator == nil {
		return Move{}, false
	}
	score := handScore(view) + trickScore(view)

	if view.Phase == domain.PhaseBiddingOpen {
		switch {
		case score >= b.RaiseScore && view.Truco.PendingValue < domain.MaxRoundValue:
			return Move{Kind: MoveRespond, Response: domain.ResponseRaise}, true
		case score >= b.AcceptScore:
			return Move{Kind: MoveRespond, Response: domain.ResponseAccept}, true
		default:
			return Move{Kind: MoveRespond, Response: domain.ResponseDecline}, true
		}
	}
	if len(view.Hand) == 0 {
		return Move{}, false
	}

	if view.Truco.CanCall && (manilhaCount(view) >= 2 || score >= b.RaiseScore) {
		return Move{Kind: MoveCallTruco}, true
	}

	idx, wins := chooseCard(view)
	hidden := !wins && !partnerWinning(view) && len(view.Table) > 0 && view.TrickNumber >= 2
	return Move{Kind: MovePlay, CardIndex: idx, Hidden: hidden}, true
}

func strength(view domain.View, c domain.Card) int {
	return domain.StrengthOf(c, *view.Indicator)
}

// handScore rates the held cards: manilhas 3, threes and twos 2, aces 1.
func handScore(view domain.View) int {
	score := 0
	for _, c := range view.Hand {
		switch {
		case domain.IsManilha(c, *view.Indicator):
			score += 3
		case c.Rank == domain.RankThree || c.Rank == domain.RankTwo:
			score += 2
		case c.Rank == domain.RankAce:
			score++
		}
	}
	return score
}

func trickScore(view domain.View) int {
	score := 0
	for _, t := range view.Tricks {
		switch {
		case t.Draw:
		case t.Winner == view.Team:
			score += 2
		default:
			score -= 2
		}
	}
	return score
}

func manilhaCount(view domain.View) int {
	n := 0
	for _, c := range view.Hand {
		if domain.IsManilha(c, *view.Indicator) {
			n++
		}
	}
	return n
}

// tableBest returns the strongest visible card of each side on the table,
// -1 when that side has shown nothing.
func tableBest(view domain.View) (mine, theirs int) {
	mine, theirs = -1, -1
	for _, p := range view.Table {
		if p.Card == nil {
			continue
		}
		s := strength(view, *p.Card)
		if domain.TeamOf(p.Seat) == view.Team {
			if s > mine {
				mine = s
			}
		} else if s > theirs {
			theirs = s
		}
	}
	return mine, theirs
}

func partnerWinning(view domain.View) bool {
	mine, theirs := tableBest(view)
	return mine > theirs
}

// chooseCard picks the card to play and reports whether it takes the lead.
func chooseCard(view domain.View) (int, bool) {
	if len(view.Table) == 0 {
		return openingCard(view), true
	}
	if partnerWinning(view) {
		return weakest(view), false
	}
	_, theirs := tableBest(view)
	if idx := weakestAbove(view, theirs); idx >= 0 {
		return idx, true
	}
	return weakest(view), false
}

// openingCard leads with the strongest card, keeping manilhas back while
// anything else is left.
func openingCard(view domain.View) int {
	best, bestManilha := -1, -1
	for i, c := range view.Hand {
		if domain.IsManilha(c, *view.Indicator) {
			if bestManilha < 0 || strength(view, c) > strength(view, view.Hand[bestManilha]) {
				bestManilha = i
			}
			continue
		}
		if best < 0 || strength(view, c) > strength(view, view.Hand[best]) {
			best = i
		}
	}
	if best >= 0 {
		return best
	}
	return bestManilha
}

func weakest(view domain.View) int {
	idx := 0
	for i, c := range view.Hand {
		if strength(view, c) < strength(view, view.Hand[idx]) {
			idx = i
		}
	}
	return idx
}

func weakestAbove(view domain.View, target int) int {
	idx := -1
	for i, c := range view.Hand {
		s := strength(view, c)
		if s <= target {
			continue
		}
		if idx < 0 || s < strength(view, view.Hand[idx]) {
			idx = i
		}
	}
	return idx
}
