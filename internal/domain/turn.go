package domain

// Team identifies one of the two partnerships. Seats 0 and 2 form team 0.
type Team int

const (
	// NoTeam marks the absence of a team (no winner yet, drawn trick, no truco).
	NoTeam Team = -1
	Team0  Team = 0
	Team1  Team = 1
)

// Other returns the opposing team.
func (t Team) Other() Team {
	switch t {
	case Team0:
		return Team1
	case Team1:
		return Team0
	default:
		return NoTeam
	}
}

// TeamOf returns the team of a seat.
func TeamOf(seat int) Team {
	return Team(seat % 2)
}

// NextSeat returns the seat that acts after seat.
func NextSeat(seat int) int {
	return (seat + 1) % SeatCount
}

// FirstOpener returns the seat that opens trick 1 for the given dealer.
func FirstOpener(dealer int) int {
	return NextSeat(dealer)
}

// NextOpener returns the seat that opens the trick after a resolved one.
// A drawn trick keeps its opener.
func NextOpener(resolved Trick) int {
	if resolved.Draw {
		return resolved.Opener
	}
	return resolved.WinnerSeat
}
