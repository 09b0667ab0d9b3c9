package frameoffset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/seth-js/yomichan-ru/internal/crossframe"
	"github.com/seth-js/yomichan-ru/internal/shared/types"
)

var ErrCycle = errors.New("frame placement would create a cycle")

type placement struct {
	parent int
	offset types.Offset
	root   bool
}

// Tree records where each frame sits inside its parent
type Tree struct {
	mu     sync.RWMutex
	frames map[int]placement
}

// NewTree creates a tree containing only the root frame
func NewTree(rootFrameID int) *Tree {
	return &Tree{
		frames: map[int]placement{rootFrameID: {root: true}},
	}
}

// Register places frameID at (x, y) inside parentID. Re-registering a frame
// moves it.
func (t *Tree) Register(frameID, parentID int, x, y float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if frameID == parentID {
		return fmt.Errorf("%w: frame %d", ErrCycle, frameID)
	}
	if p, ok := t.frames[frameID]; ok && p.root {
		return fmt.Errorf("cannot move root frame %d", frameID)
	}
	// Walk up from the new parent; meeting frameID means a cycle.
	for id, steps := parentID, 0; steps <= len(t.frames); steps++ {
		p, ok := t.frames[id]
		if !ok || p.root {
			break
		}
		if p.parent == frameID {
			return fmt.Errorf("%w: frame %d under %d", ErrCycle, frameID, parentID)
		}
		id = p.parent
	}

	t.frames[frameID] = placement{parent: parentID, offset: types.Offset{X: x, Y: y}}
	return nil
}

// Detach removes frameID. Frames nested in it lose their path to the root.
func (t *Tree) Detach(frameID int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p, ok := t.frames[frameID]; ok && !p.root {
		delete(t.frames, frameID)
	}
}

// Offset sums the placements from frameID up to the root. It reports false
// when some frame on the way is unknown.
func (t *Tree) Offset(frameID int) (types.Offset, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total types.Offset
	id := frameID
	for steps := 0; steps <= len(t.frames); steps++ {
		p, ok := t.frames[id]
		if !ok {
			return types.Offset{}, false
		}
		if p.root {
			return total, true
		}
		total = total.Add(p.offset)
		id = p.parent
	}
	return types.Offset{}, false
}

// Frames returns the known frame ids in ascending order
func (t *Tree) Frames() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]int, 0, len(t.frames))
	for id := range t.frames {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// RegisterHandlers exposes the tree to other frames
func RegisterHandlers(router *crossframe.Router, tree *Tree) {
	router.Handle(ActionGetOffset, func(ctx context.Context, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			FrameID *int `json:"frameId"`
		}](params)
		if err != nil {
			return nil, err
		}
		if req.FrameID == nil {
			return nil, errors.New("frameId is required")
		}

		offset, ok := tree.Offset(*req.FrameID)
		if !ok {
			return nil, nil
		}
		return offset, nil
	})

	router.Handle(ActionRegisterFrame, func(ctx context.Context, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			FrameID       *int    `json:"frameId"`
			ParentFrameID int     `json:"parentFrameId"`
			X             float64 `json:"x"`
			Y             float64 `json:"y"`
		}](params)
		if err != nil {
			return nil, err
		}
		if req.FrameID == nil {
			return nil, errors.New("frameId is required")
		}
		return true, tree.Register(*req.FrameID, req.ParentFrameID, req.X, req.Y)
	})

	router.Handle(ActionDetachFrame, func(ctx context.Context, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			FrameID int `json:"frameId"`
		}](params)
		if err != nil {
			return nil, err
		}
		tree.Detach(req.FrameID)
		return nil, nil
	})
}
