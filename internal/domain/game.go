package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// DealFunc produces the cards for a new hand.
type DealFunc func(rng *rand.Rand) (Deal, error)

// Game is the round controller: it owns hands, tricks, bidding and scores for
// one table. Every operation validates first and mutates only on success.
type Game struct {
	Phase      Phase
	Rules      Rules
	Score      Scoreboard
	Hands      [SeatCount][]Card
	Round      *Round
	HandNumber int
	LastRound  *RoundSummary
	GameWinner Team

	// Deal produces each hand's cards; DealHand when nil.
	Deal DealFunc

	nextDealer int
	rng        *rand.Rand
}

// NewGame returns a game in PhaseNotStarted. rng may be nil to use a
// time-seeded default.
func NewGame(rules Rules, rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if rules.TargetScore <= 0 {
		rules.TargetScore = DefaultTargetScore
	}
	return &Game{
		Phase:      PhaseNotStarted,
		Rules:      rules,
		Score:      NewScoreboard(rules.TargetScore),
		GameWinner: NoTeam,
		nextDealer: SeatCount - 1,
		rng:        rng,
	}
}

// Start deals the first hand of a new game.
func (g *Game) Start() error {
	if g.Phase != PhaseNotStarted {
		return fmt.Errorf("%w: game already started", ErrNotAllowed)
	}
	deal, err := g.draw()
	if err != nil {
		return err
	}
	g.Score = NewScoreboard(g.Rules.TargetScore)
	g.HandNumber = 0
	g.LastRound = nil
	g.GameWinner = NoTeam
	g.beginRound(deal)
	return nil
}

// PlayCard lays the card at cardIndex of seat's hand on the table.
func (g *Game) PlayCard(seat, cardIndex int, hidden bool) error {
	if err := g.checkPlay(seat, cardIndex, hidden); err != nil {
		return err
	}

	r := g.Round
	hand := g.Hands[seat]
	card := hand[cardIndex]
	g.Hands[seat] = append(append([]Card{}, hand[:cardIndex]...), hand[cardIndex+1:]...)

	trick := r.CurrentTrick()
	trick.Plays = append(trick.Plays, Play{Seat: seat, Card: card, Hidden: hidden})
	if !trick.Complete() {
		r.Turn = NextSeat(seat)
		return nil
	}

	trick.Resolve(r.Indicator)
	g.Score.CreditTrick(trick.Winner)
	if winner, decided := DecideRound(r.Tricks); decided {
		g.finishRound(winner, false)
		return nil
	}
	opener := NextOpener(*trick)
	r.Tricks = append(r.Tricks, NewTrick(len(r.Tricks)+1, opener))
	r.Turn = opener
	return nil
}

func (g *Game) checkPlay(seat, cardIndex int, hidden bool) error {
	switch g.Phase {
	case PhaseTrickInProgress:
	case PhaseBiddingOpen:
		return fmt.Errorf("%w: card play is suspended while a truco call is pending", ErrNotAllowed)
	default:
		return fmt.Errorf("%w: no trick in progress (phase %s)", ErrNotAllowed, g.Phase)
	}
	r := g.Round
	if seat != r.Turn {
		if hidden {
			return fmt.Errorf("%w: seat %d played face-down out of turn", ErrInvalidHiddenPlay, seat)
		}
		return fmt.Errorf("%w: seat %d is to play", ErrNotYourTurn, r.Turn)
	}
	if cardIndex < 0 || cardIndex >= len(g.Hands[seat]) {
		return fmt.Errorf("%w: index %d with %d cards in hand", ErrInvalidCard, cardIndex, len(g.Hands[seat]))
	}
	if hidden && r.CurrentTrick().Number == 1 {
		return fmt.Errorf("%w: face-down plays start from the second trick", ErrInvalidHiddenPlay)
	}
	return nil
}

// CallTruco opens a truco negotiation on behalf of seat's team.
func (g *Game) CallTruco(seat int) error {
	switch g.Phase {
	case PhaseTrickInProgress:
	case PhaseBiddingOpen:
		return fmt.Errorf("%w: a truco call is already pending", ErrIllegalBid)
	default:
		return fmt.Errorf("%w: no round in progress (phase %s)", ErrNotAllowed, g.Phase)
	}
	r := g.Round
	if seat != r.Turn {
		return fmt.Errorf("%w: only the seat in turn may call (seat %d)", ErrIllegalBid, r.Turn)
	}
	team := TeamOf(seat)
	if err := r.Truco.CanCall(team, r.Value); err != nil {
		return err
	}
	r.Truco.Call(team, r.Value)
	g.Phase = PhaseBiddingOpen
	return nil
}

// RespondTruco answers the pending call on behalf of seat's team.
func (g *Game) RespondTruco(seat int, resp Response) error {
	switch g.Phase {
	case PhaseBiddingOpen:
	case PhaseTrickInProgress:
		return fmt.Errorf("%w: no pending truco call", ErrIllegalBid)
	default:
		return fmt.Errorf("%w: no round in progress (phase %s)", ErrNotAllowed, g.Phase)
	}
	r := g.Round
	if err := r.Truco.CanRespond(TeamOf(seat), resp); err != nil {
		return err
	}

	out := r.Truco.Respond(resp, r.Value)
	if out.RoundValue > r.Value {
		r.Value = out.RoundValue
	}
	if out.Declined {
		g.finishRound(out.Winner, true)
		return nil
	}
	if !r.Truco.Open() {
		g.Phase = PhaseTrickInProgress
	}
	return nil
}

// NextRound handles a new-round request: it deals the next hand after a paused
// round, or returns a finished game to PhaseNotStarted.
func (g *Game) NextRound() error {
	switch g.Phase {
	case PhaseRoundOver:
		deal, err := g.draw()
		if err != nil {
			return err
		}
		g.beginRound(deal)
		return nil
	case PhaseGameOver:
		g.Phase = PhaseNotStarted
		g.Round = nil
		g.Hands = [SeatCount][]Card{}
		g.Score = NewScoreboard(g.Rules.TargetScore)
		g.HandNumber = 0
		g.GameWinner = NoTeam
		return nil
	default:
		return fmt.Errorf("%w: round has not ended (phase %s)", ErrNotAllowed, g.Phase)
	}
}

func (g *Game) finishRound(winner Team, declined bool) {
	r := g.Round
	r.Winner = winner
	r.Decided = true
	g.Score.Award(winner, r.Value)

	points := 0
	if winner != NoTeam {
		points = r.Value
	}
	g.LastRound = &RoundSummary{
		Number:   r.Number,
		Winner:   winner,
		Points:   points,
		Declined: declined,
		Draw:     winner == NoTeam,
	}

	if w := g.Score.Winner(); w != NoTeam {
		g.GameWinner = w
		g.Phase = PhaseGameOver
		return
	}
	if g.Rules.AutoDeal {
		if deal, err := g.draw(); err == nil {
			g.beginRound(deal)
			return
		}
	}
	g.Phase = PhaseRoundOver
}

func (g *Game) draw() (Deal, error) {
	deal := g.Deal
	if deal == nil {
		deal = DealHand
	}
	return deal(g.rng)
}

func (g *Game) beginRound(deal Deal) {
	dealer := g.nextDealer
	g.nextDealer = NextSeat(dealer)
	g.HandNumber++
	g.Hands = deal.Hands
	g.Score.ResetRound()

	opener := FirstOpener(dealer)
	g.Round = &Round{
		Number:    g.HandNumber,
		Dealer:    dealer,
		Indicator: deal.Indicator,
		Value:     1,
		Tricks:    []Trick{NewTrick(1, opener)},
		Turn:      opener,
		Truco:     NewTruco(),
		Winner:    NoTeam,
	}
	g.Phase = PhaseTrickInProgress
}
