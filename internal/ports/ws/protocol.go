package ws

import (
	"encoding/json"

	"truco/internal/domain"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> server message types.
const (
	TypeJoin            = "join"
	TypeLeave           = "leave"
	TypeStartRound      = "start_round"
	TypePlayCard        = "play_card"
	TypeCallTruco       = "call_truco"
	TypeRespondTruco    = "respond_truco"
	TypeRequestNewRound = "request_new_round"
	TypeSnapshot        = "snapshot" // also the type of pushed snapshots
)

// Server -> client message types besides the room event kinds.
const (
	TypeJoined = "joined"
	TypeLeft   = "left"
	TypeError  = "error"
)

type joinRequest struct {
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type joinedEvent struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
	Seat   int    `json:"seat"`
}

type playCardRequest struct {
	CardIndex int  `json:"card_index"`
	Hidden    bool `json:"hidden"`
}

type respondTrucoRequest struct {
	Response domain.Response `json:"response"`
}

type errorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func encode(msgType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: msgType, Payload: raw})
}
