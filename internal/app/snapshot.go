package app

import "truco/internal/domain"

// SeatInfo is the public part of a seat. It never carries cards.
type SeatInfo struct {
	Seat      int         `json:"seat"`
	UserID    string      `json:"user_id"`
	Username  string      `json:"username"`
	Team      domain.Team `json:"team"`
	HandSize  int         `json:"hand_size"`
	Connected bool        `json:"connected"`
	Bot       bool        `json:"bot"`
}

// Snapshot is the room state as one player sees it.
type Snapshot struct {
	RoomID  string     `json:"room_id"`
	Players []SeatInfo `json:"players"`
	domain.View
}

// Snapshot returns the room as seen by userID.
func (r *Room) Snapshot(userID string) (Snapshot, error) {
	seat, ok := r.SeatOf(userID)
	if !ok {
		return Snapshot{}, ErrUnknownPlayer
	}
	return r.snapshotFor(seat), nil
}

func (r *Room) snapshotFor(seat int) Snapshot {
	view := r.game.ViewFor(seat)
	players := make([]SeatInfo, 0, domain.SeatCount)
	for i, p := range r.seats {
		if p == nil {
			continue
		}
		players = append(players, SeatInfo{
			Seat:      i,
			UserID:    p.UserID,
			Username:  p.Username,
			Team:      domain.TeamOf(i),
			HandSize:  view.HandSizes[i],
			Connected: p.Connected,
			Bot:       p.Bot,
		})
	}
	return Snapshot{RoomID: r.ID, Players: players, View: view}
}
