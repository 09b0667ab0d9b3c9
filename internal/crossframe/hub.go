package crossframe

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/seth-js/yomichan-ru/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// Hub is an in-process Invoker over a set of frame routers
type Hub struct {
	frames  sync.Map // int -> *Router
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{logger: zap.NewNop()}
}

// WithLogger sets the logger
func (h *Hub) WithLogger(logger *zap.Logger) *Hub {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithMetrics adds metrics collection
func (h *Hub) WithMetrics(metrics *monitoring.Metrics) *Hub {
	h.metrics = metrics
	return h
}

// Attach makes router reachable as frameID
func (h *Hub) Attach(frameID int, router *Router) {
	h.frames.Store(frameID, router)
	h.logger.Debug("frame attached", zap.Int("frame_id", frameID))
}

// Detach removes a frame. Later calls to it fail with ErrFrameNotFound.
func (h *Hub) Detach(frameID int) {
	h.frames.Delete(frameID)
	h.logger.Debug("frame detached", zap.Int("frame_id", frameID))
}

// Router returns the router attached as frameID
func (h *Hub) Router(frameID int) (*Router, bool) {
	val, ok := h.frames.Load(frameID)
	if !ok {
		return nil, false
	}
	return val.(*Router), true
}

// Frames returns the attached frame ids in ascending order
func (h *Hub) Frames() []int {
	var ids []int
	h.frames.Range(func(key, _ interface{}) bool {
		ids = append(ids, key.(int))
		return true
	})
	sort.Ints(ids)
	return ids
}

// Invoke dispatches action on the router attached as frameID
func (h *Hub) Invoke(ctx context.Context, frameID int, action string, params any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	router, ok := h.Router(frameID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrFrameNotFound, frameID)
	}

	raw, err := Encode(params)
	if err != nil {
		return nil, err
	}

	result, err := router.Dispatch(ctx, action, raw)
	if err != nil {
		h.metrics.RecordDispatch(action, monitoring.StatusError)
		h.logger.Debug("action failed",
			zap.Int("frame_id", frameID),
			zap.String("action", action),
			zap.Error(err))
		return nil, &RemoteError{FrameID: frameID, Action: action, Message: err.Error()}
	}

	h.metrics.RecordDispatch(action, monitoring.StatusOK)
	return result, nil
}
