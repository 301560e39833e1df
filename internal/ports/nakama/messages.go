package nakama

import (
	"encoding/json"
	"fmt"

	"truco/internal/app"
	"truco/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type playCardRequest struct {
	CardIndex int  `json:"card_index"`
	Hidden    bool `json:"hidden"`
}

type respondTrucoRequest struct {
	Response domain.Response `json:"response"`
}

// errorEvent is sent to the requester of a rejected action.
type errorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeRequest unmarshals a client payload. An empty payload leaves v untouched.
func decodeRequest(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: malformed payload: %v", domain.ErrNotAllowed, err)
	}
	return nil
}

var eventOpCodes = map[app.EventKind]int64{
	app.EventSnapshot:     OpSnapshot,
	app.EventPlayerJoined: OpPlayerJoined,
	app.EventPlayerLeft:   OpPlayerLeft,
	app.EventGameStarted:  OpGameStarted,
	app.EventRoundEnded:   OpRoundEnded,
	app.EventGameEnded:    OpGameEnded,
}

// MatchLabel is what MatchList queries filter on.
type MatchLabel struct {
	Open  int
	Game  string
	Phase domain.Phase
}

// Marshal renders the label as the JSON object Nakama indexes.
func (l MatchLabel) Marshal() (string, error) {
	st, err := structpb.NewStruct(map[string]interface{}{
		"open":  l.Open,
		"game":  l.Game,
		"phase": string(l.Phase),
	})
	if err != nil {
		return "", err
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(st)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func labelFor(room *app.Room) MatchLabel {
	return MatchLabel{
		Open:  domain.SeatCount - room.SeatedCount(),
		Game:  GameName,
		Phase: room.Phase(),
	}
}
