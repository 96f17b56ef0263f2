package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	ActionMove  = "move"
	ActionReset = "reset"
	ActionState = "state"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Reply is what the server sends back, always echoing the request action.
type Reply struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

func (that Message) reply(payload any) Reply {
	return Reply{Action: that.Action, Payload: payload}
}

// connection is one client socket bound to a game session.
type connection struct {
	ws     *websocket.Conn
	gameID string

	closeOnce sync.Once
}

func (that *connection) send(reply Reply) error {
	if err := that.ws.WriteJSON(reply); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *connection) close() {
	that.closeOnce.Do(func() {
		_ = that.ws.Close()
	})
}
