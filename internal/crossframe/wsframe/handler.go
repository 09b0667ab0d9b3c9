package wsframe

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/seth-js/yomichan-ru/internal/crossframe"
	"github.com/seth-js/yomichan-ru/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

// Handler serves crossframe calls arriving over websocket connections
type Handler struct {
	invoker  crossframe.Invoker
	upgrader websocket.Upgrader
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a handler dispatching to invoker. All origins are
// accepted until WithAllowedOrigins is called.
func NewHandler(invoker crossframe.Invoker) *Handler {
	return &Handler{
		invoker: invoker,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: zap.NewNop(),
	}
}

// WithLogger sets the logger
func (h *Handler) WithLogger(logger *zap.Logger) *Handler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithMetrics adds metrics collection
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// WithAllowedOrigins restricts the Origin header of upgrade requests.
// "*" allows any origin; requests without an Origin header are always allowed.
func (h *Handler) WithAllowedOrigins(origins []string) *Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			h.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
			return h
		}
		allowed[o] = struct{}{}
	}
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
	return h
}

// HandleConnection upgrades the request and serves it until the peer leaves
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	// Calls are bound to the connection, not to the upgrade request.
	s := &session{conn: conn, handler: h}
	s.serve(context.WithoutCancel(c.Request.Context()))
}

type session struct {
	conn    *websocket.Conn
	handler *Handler
	writeMu sync.Mutex
	calls   sync.WaitGroup
}

// serve runs the read loop. Calls still running when the peer leaves see
// their context cancelled.
func (s *session) serve(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	logger := s.handler.logger
	remote := s.conn.RemoteAddr().String()
	logger.Debug("frame connected", zap.String("remote", remote))

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go s.keepalive(done)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", zap.String("remote", remote), zap.Error(err))
			}
			break
		}

		var env Envelope
		if err := sonic.Unmarshal(data, &env); err != nil {
			logger.Warn("malformed envelope", zap.String("remote", remote), zap.Error(err))
			continue
		}
		s.handler.metrics.RecordWSMessage("in", env.Kind)

		if env.Kind != KindInvoke {
			logger.Debug("ignoring envelope", zap.String("kind", env.Kind))
			continue
		}

		s.calls.Add(1)
		go func() {
			defer s.calls.Done()
			s.invoke(ctx, env)
		}()
	}

	close(done)
	cancel()
	s.calls.Wait()
	s.conn.Close()
	logger.Debug("frame disconnected", zap.String("remote", remote))
}

func (s *session) invoke(ctx context.Context, env Envelope) {
	resp := Envelope{ID: env.ID, Kind: KindResponse, Target: env.Target}

	result, err := s.handler.invoker.Invoke(ctx, env.Target, env.Action, env.Params)
	if err != nil {
		resp.Error = errorMessage(err)
	} else {
		resp.Result = result
	}

	if err := s.write(resp); err != nil {
		s.handler.logger.Debug("response dropped",
			zap.String("id", env.ID),
			zap.String("action", env.Action),
			zap.Error(err))
	}
}

func (s *session) write(env Envelope) error {
	data, err := sonic.Marshal(env)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	s.handler.metrics.RecordWSMessage("out", env.Kind)
	return nil
}

func (s *session) keepalive(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func errorMessage(err error) string {
	var remote *crossframe.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "remote error"
}
