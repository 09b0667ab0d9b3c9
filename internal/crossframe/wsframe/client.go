package wsframe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/seth-js/yomichan-ru/internal/crossframe"
	"go.uber.org/zap"
)

// Client is a crossframe.Invoker over a websocket connection to a host
type Client struct {
	conn    *websocket.Conn
	logger  *zap.Logger
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Envelope
	closed  bool
	done    chan struct{}
}

// Dial connects to the host at url
func Dial(ctx context.Context, url string, header http.Header) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection and starts reading from it
func NewClient(conn *websocket.Conn) *Client {
	c := &Client{
		conn:    conn,
		logger:  zap.NewNop(),
		pending: make(map[string]chan Envelope),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// WithLogger sets the logger
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Invoke sends action to frameID and waits for its response or ctx
func (c *Client) Invoke(ctx context.Context, frameID int, action string, params any) (json.RawMessage, error) {
	raw, err := crossframe.Encode(params)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ch := make(chan Envelope, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	env := Envelope{ID: id, Kind: KindInvoke, Target: frameID, Action: action, Params: raw}
	if err := c.write(env); err != nil {
		c.forget(id)
		return nil, fmt.Errorf("%w: %v", ErrClosed, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, ErrClosed
		}
		if resp.Error != "" {
			return nil, &crossframe.RemoteError{FrameID: frameID, Action: action, Message: resp.Error}
		}
		if len(resp.Result) == 0 {
			return json.RawMessage("null"), nil
		}
		return resp.Result, nil
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	}
}

// Close closes the connection and fails every pending call with ErrClosed
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}

// Done is closed once the connection is gone
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) write(env Envelope) error {
	data, err := sonic.Marshal(env)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) readLoop() {
	defer c.shutdown()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := sonic.Unmarshal(data, &env); err != nil {
			c.logger.Warn("malformed envelope", zap.Error(err))
			continue
		}
		if env.Kind != KindResponse {
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[env.ID]
		delete(c.pending, env.ID)
		c.mu.Unlock()

		if ok {
			ch <- env
		}
	}
}

func (c *Client) shutdown() {
	c.mu.Lock()
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()

	c.conn.Close()
	close(c.done)
}
