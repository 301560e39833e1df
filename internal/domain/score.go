package domain

// DefaultTargetScore is the game score that wins a Truco game.
const DefaultTargetScore = 12

// TeamScore holds a team's running totals.
type TeamScore struct {
	GameScore       int // points toward the target, kept across rounds
	HandsWonInRound int // tricks won in the current round
}

// Scoreboard tracks both teams' totals and the game threshold.
type Scoreboard struct {
	Teams  [2]TeamScore
	Target int
}

// NewScoreboard returns an empty scoreboard for the given target.
func NewScoreboard(target int) Scoreboard {
	if target <= 0 {
		target = DefaultTargetScore
	}
	return Scoreboard{Target: target}
}

// Award adds points to team's game score. Points are never negative.
func (s *Scoreboard) Award(team Team, points int) {
	if team == NoTeam || points <= 0 {
		return
	}
	s.Teams[team].GameScore += points
}

// CreditTrick counts a trick win toward the current round.
func (s *Scoreboard) CreditTrick(team Team) {
	if team == NoTeam {
		return
	}
	s.Teams[team].HandsWonInRound++
}

// ResetRound clears the per-round trick counters.
func (s *Scoreboard) ResetRound() {
	for i := range s.Teams {
		s.Teams[i].HandsWonInRound = 0
	}
}

// Winner returns the team that reached the target, if any.
func (s *Scoreboard) Winner() Team {
	for i, t := range s.Teams {
		if t.GameScore >= s.Target {
			return Team(i)
		}
	}
	return NoTeam
}

// Scores returns both game scores indexed by team.
func (s *Scoreboard) Scores() [2]int {
	return [2]int{s.Teams[0].GameScore, s.Teams[1].GameScore}
}
