package crossframe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrFrameNotFound = errors.New("frame not found")
)

// Invoker sends an action to the frame identified by frameID and returns
// the raw JSON result
type Invoker interface {
	Invoke(ctx context.Context, frameID int, action string, params any) (json.RawMessage, error)
}

// Params is the usual shape of action parameters
type Params map[string]interface{}

// RemoteError is an error raised by the handler of the target frame
type RemoteError struct {
	FrameID int
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("frame %d: %s: %s", e.FrameID, e.Action, e.Message)
}

// Decode unmarshals a raw result into T. A JSON null decodes to the zero value.
func Decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode result: %w", err)
	}
	return out, nil
}

// Encode marshals action params or results
func Encode(v any) (json.RawMessage, error) {
	if v == nil {
		return json.RawMessage("null"), nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return b, nil
}
