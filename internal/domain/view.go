package domain

// TablePlay is a play as one viewer sees it. Card is nil when the viewer may
// not see a face-down card.
type TablePlay struct {
	Seat   int   `json:"seat"`
	Card   *Card `json:"card,omitempty"`
	Hidden bool  `json:"hidden"`
}

// TrickSummary is a resolved trick with every card revealed.
type TrickSummary struct {
	Number     int         `json:"number"`
	Opener     int         `json:"opener"`
	Plays      []TablePlay `json:"plays"`
	Draw       bool        `json:"draw"`
	Winner     Team        `json:"winner"`
	WinnerSeat int         `json:"winner_seat"`
}

// TrucoView is the bidding state relative to one viewer.
type TrucoView struct {
	State              TrucoPhase `json:"state"`
	CallingTeam        Team       `json:"calling_team"`
	RespondingTeam     Team       `json:"responding_team"`
	PendingValue       int        `json:"pending_value"`
	AwaitingMyResponse bool       `json:"awaiting_my_response"`
	CanCall            bool       `json:"can_call"`
}

// View is the game state as seen from one seat. It never carries another
// seat's held cards.
//
// RoundOver and RoundWinner are set only while the game rests in round_over or
// game_over. When the next hand is dealt automatically, the decided round is
// reported through LastRound, whose Number is HandNumber-1.
type View struct {
	Phase       Phase          `json:"phase"`
	Seat        int            `json:"seat"`
	Team        Team           `json:"team"`
	HandNumber  int            `json:"hand_number"`
	TrickNumber int            `json:"trick_number"`
	Dealer      int            `json:"dealer"`
	Turn        int            `json:"turn"`
	Scores      [2]int         `json:"scores"`
	TargetScore int            `json:"target_score"`
	RoundValue  int            `json:"round_value"`
	Indicator   *Card          `json:"indicator,omitempty"`
	Manilha     *Rank          `json:"manilha,omitempty"`
	Table       []TablePlay    `json:"table"`
	Tricks      []TrickSummary `json:"tricks"`
	Hand        []Card         `json:"hand"`
	HandSizes   [SeatCount]int `json:"hand_sizes"`
	Truco       TrucoView      `json:"truco"`
	RoundOver   bool           `json:"round_over"`
	RoundWinner Team           `json:"round_winner"`
	GameWinner  Team           `json:"game_winner"`
	LastRound   *RoundSummary  `json:"last_round,omitempty"`
}

// ViewFor builds the snapshot of the game for seat.
func (g *Game) ViewFor(seat int) View {
	v := View{
		Phase:       g.Phase,
		Seat:        seat,
		Team:        TeamOf(seat),
		HandNumber:  g.HandNumber,
		Dealer:      -1,
		Turn:        -1,
		Scores:      g.Score.Scores(),
		TargetScore: g.Score.Target,
		Table:       []TablePlay{},
		Tricks:      []TrickSummary{},
		Hand:        []Card{},
		Truco:       TrucoView{State: TrucoNone, CallingTeam: NoTeam, RespondingTeam: NoTeam},
		RoundWinner: NoTeam,
		GameWinner:  g.GameWinner,
		LastRound:   g.LastRound,
	}
	if seat < 0 || seat >= SeatCount {
		v.Team = NoTeam
	}
	if g.Phase == PhaseRoundOver || g.Phase == PhaseGameOver {
		v.RoundOver = true
		if g.LastRound != nil {
			v.RoundWinner = g.LastRound.Winner
		}
	}

	for s := 0; s < SeatCount; s++ {
		v.HandSizes[s] = len(g.Hands[s])
	}
	if v.Team != NoTeam {
		v.Hand = append(v.Hand, g.Hands[seat]...)
	}

	r := g.Round
	if r == nil {
		return v
	}
	v.Dealer = r.Dealer
	v.RoundValue = r.Value
	indicator := r.Indicator
	manilha := ManilhaRank(indicator)
	v.Indicator = &indicator
	v.Manilha = &manilha

	live := g.Phase == PhaseTrickInProgress || g.Phase == PhaseBiddingOpen
	if live {
		v.Turn = r.Turn
	}
	for _, t := range r.Tricks {
		if !t.Resolved {
			v.TrickNumber = t.Number
			for _, p := range t.Plays {
				v.Table = append(v.Table, g.tablePlay(p, v.Team))
			}
			continue
		}
		v.TrickNumber = t.Number
		v.Tricks = append(v.Tricks, summarize(t))
	}

	if r.Truco.Open() {
		v.Truco.State = r.Truco.Phase
		v.Truco.CallingTeam = r.Truco.CallingTeam
		v.Truco.RespondingTeam = r.Truco.RespondingTeam
		v.Truco.PendingValue = r.Truco.PendingValue
		v.Truco.AwaitingMyResponse = v.Team != NoTeam && v.Team == r.Truco.RespondingTeam
	}
	if g.Phase == PhaseTrickInProgress && seat == r.Turn {
		v.Truco.CanCall = r.Truco.CanCall(v.Team, r.Value) == nil
	}
	return v
}

func (g *Game) tablePlay(p Play, viewer Team) TablePlay {
	tp := TablePlay{Seat: p.Seat, Hidden: p.Hidden}
	if !p.Hidden || (viewer != NoTeam && TeamOf(p.Seat) == viewer) {
		c := p.Card
		tp.Card = &c
	}
	return tp
}

func summarize(t Trick) TrickSummary {
	s := TrickSummary{
		Number:     t.Number,
		Opener:     t.Opener,
		Plays:      make([]TablePlay, 0, len(t.Plays)),
		Draw:       t.Draw,
		Winner:     t.Winner,
		WinnerSeat: t.WinnerSeat,
	}
	for _, p := range t.Plays {
		c := p.Card
		s.Plays = append(s.Plays, TablePlay{Seat: p.Seat, Card: &c, Hidden: p.Hidden})
	}
	return s
}
