package wsframe

import (
	"encoding/json"
	"errors"
)

const (
	KindInvoke   = "invoke"
	KindResponse = "response"
)

var ErrClosed = errors.New("connection closed")

// Envelope is one websocket message
type Envelope struct {
	ID     string          `json:"id"`
	Kind   string          `json:"kind"`
	Target int             `json:"target"`
	Action string          `json:"action,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}
