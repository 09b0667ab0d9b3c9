package frameoffset

import (
	"context"
	"fmt"

	"github.com/seth-js/yomichan-ru/internal/crossframe"
	"github.com/seth-js/yomichan-ru/internal/shared/types"
)

// Actions answered by the frame that keeps the Tree
const (
	ActionGetOffset     = "FrameOffsetForwarder.getOffset"
	ActionRegisterFrame = "FrameOffsetForwarder.registerFrame"
	ActionDetachFrame   = "FrameOffsetForwarder.detachFrame"
)

// Source reports the offset of the calling frame. A nil offset with a nil
// error means the offset cannot be determined.
type Source interface {
	Offset(ctx context.Context) (*types.Offset, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) (*types.Offset, error)

// Offset calls f
func (f SourceFunc) Offset(ctx context.Context) (*types.Offset, error) {
	return f(ctx)
}

// Forwarder asks the root frame for the offset of one frame
type Forwarder struct {
	invoker     crossframe.Invoker
	rootFrameID int
	frameID     int
}

// NewForwarder creates a Source for frameID answered by rootFrameID
func NewForwarder(invoker crossframe.Invoker, rootFrameID, frameID int) *Forwarder {
	return &Forwarder{
		invoker:     invoker,
		rootFrameID: rootFrameID,
		frameID:     frameID,
	}
}

// Offset implements Source
func (f *Forwarder) Offset(ctx context.Context) (*types.Offset, error) {
	raw, err := f.invoker.Invoke(ctx, f.rootFrameID, ActionGetOffset, crossframe.Params{"frameId": f.frameID})
	if err != nil {
		return nil, fmt.Errorf("get offset of frame %d: %w", f.frameID, err)
	}
	return crossframe.Decode[*types.Offset](raw)
}

// Register reports the placement of the forwarder's frame inside parentFrameID
func (f *Forwarder) Register(ctx context.Context, parentFrameID int, x, y float64) error {
	_, err := f.invoker.Invoke(ctx, f.rootFrameID, ActionRegisterFrame, crossframe.Params{
		"frameId":       f.frameID,
		"parentFrameId": parentFrameID,
		"x":             x,
		"y":             y,
	})
	if err != nil {
		return fmt.Errorf("register frame %d: %w", f.frameID, err)
	}
	return nil
}

// Detach removes the forwarder's frame from the root frame's tree
func (f *Forwarder) Detach(ctx context.Context) error {
	_, err := f.invoker.Invoke(ctx, f.rootFrameID, ActionDetachFrame, crossframe.Params{"frameId": f.frameID})
	if err != nil {
		return fmt.Errorf("detach frame %d: %w", f.frameID, err)
	}
	return nil
}
