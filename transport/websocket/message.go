package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-live/internal/entity"
)

const (
	actionJoin    = "game:join"
	actionTurn    = "game:turn"
	actionRematch = "game:rematch"
	actionChat    = "game:chat"
	actionState   = "game:state"
	actionError   = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	Player    string `json:"player"`
	SessionID string `json:"sessionId"`
}

type JoinResult struct {
	IsSpectator bool   `json:"isSpectator"`
	Role        string `json:"role"`
}

type TurnPayload struct {
	Row       int    `json:"row"`
	Column    int    `json:"column"`
	Player    string `json:"player"`
	SessionID string `json:"sessionId"`
}

type RematchPayload struct {
	Player string `json:"player"`
}

type ChatPayload struct {
	Player  string `json:"player"`
	Message string `json:"message"`
}

type ErrorPayload struct {
	Action string           `json:"action"`
	Error  string           `json:"error"`
	Game   *entity.Snapshot `json:"game,omitempty"`
}

func newMessage(action string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{Action: action, Payload: raw}, nil
}
