package popup

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/seth-js/yomichan-ru/internal/crossframe"
	"github.com/seth-js/yomichan-ru/internal/infrastructure/monitoring"
	"github.com/seth-js/yomichan-ru/internal/shared/types"
	"go.uber.org/zap"
)

// CreateRequest selects or creates a popup
type CreateRequest struct {
	ID            *string `json:"id,omitempty"`
	ParentPopupID *string `json:"parentPopupId,omitempty"`
	Depth         *int    `json:"depth,omitempty"`
}

// Factory owns the popups hosted in one frame
type Factory struct {
	frameID int
	mu      sync.RWMutex
	popups  map[string]*Local // Protected by mu
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewFactory creates a factory for popups hosted in frameID
func NewFactory(frameID int) *Factory {
	return &Factory{
		frameID: frameID,
		popups:  make(map[string]*Local),
		logger:  zap.NewNop(),
	}
}

// WithLogger sets the logger
func (f *Factory) WithLogger(logger *zap.Logger) *Factory {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// WithMetrics adds metrics tracking to the factory
func (f *Factory) WithMetrics(metrics *monitoring.Metrics) *Factory {
	f.metrics = metrics
	return f
}

// GetOrCreatePopup returns the popup named by req.ID, creating it when it
// does not exist. A new popup below a parent is one level deeper than it.
func (f *Factory) GetOrCreatePopup(req CreateRequest) (*Local, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if req.ID != nil {
		if p, ok := f.popups[*req.ID]; ok {
			return p, nil
		}
	}

	var parent *Local
	if req.ParentPopupID != nil {
		p, ok := f.popups[*req.ParentPopupID]
		if !ok {
			return nil, fmt.Errorf("%w: parent %s", ErrPopupNotFound, *req.ParentPopupID)
		}
		if p.Child() != nil {
			return nil, fmt.Errorf("%w: %s", ErrHasChild, p.ID())
		}
		parent = p
	}

	depth := 0
	switch {
	case parent != nil:
		depth = parent.Depth() + 1
	case req.Depth != nil && *req.Depth > 0:
		depth = *req.Depth
	}

	popupID := ""
	if req.ID != nil {
		popupID = *req.ID
	}
	popup := NewLocal(popupID, depth, f.frameID)
	if parent != nil {
		_ = popup.SetParent(parent)
		_ = parent.SetChild(popup)
	}

	f.popups[popup.ID()] = popup
	f.metrics.SetPopupsHosted(len(f.popups))
	f.logger.Info("popup created",
		zap.String("popup_id", popup.ID()),
		zap.Int("depth", depth),
		zap.Int("frame_id", f.frameID))
	return popup, nil
}

// Get retrieves a popup by id
func (f *Factory) Get(popupID string) (*Local, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.popups[popupID]
	return p, ok
}

// Popups lists the hosted popups ordered by id
func (f *Factory) Popups() []types.PopupInfo {
	f.mu.RLock()
	infos := make([]types.PopupInfo, 0, len(f.popups))
	for _, p := range f.popups {
		infos = append(infos, p.Info())
	}
	f.mu.RUnlock()

	sortInfos(infos)
	return infos
}

// RegisterHandlers exposes the factory's popups to other frames
func (f *Factory) RegisterHandlers(router *crossframe.Router) {
	router.Handle(ActionGetOrCreatePopup, func(ctx context.Context, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[CreateRequest](params)
		if err != nil {
			return nil, err
		}
		p, err := f.GetOrCreatePopup(req)
		if err != nil {
			return nil, err
		}
		return p.Info(), nil
	})

	f.handle(router, ActionSetOptionsContext, func(ctx context.Context, p *Local, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			OptionsContext types.OptionsContext `json:"optionsContext"`
		}](params)
		if err != nil {
			return nil, err
		}
		return nil, p.SetOptionsContext(ctx, req.OptionsContext)
	})

	f.handle(router, ActionHide, func(ctx context.Context, p *Local, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			ChangeFocus bool `json:"changeFocus"`
		}](params)
		if err != nil {
			return nil, err
		}
		return nil, p.Hide(ctx, req.ChangeFocus)
	})

	f.handle(router, ActionIsVisible, func(ctx context.Context, p *Local, _ json.RawMessage) (any, error) {
		return p.IsVisible(ctx)
	})

	f.handle(router, ActionSetVisibleOverride, func(ctx context.Context, p *Local, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			Value    bool `json:"value"`
			Priority int  `json:"priority"`
		}](params)
		if err != nil {
			return nil, err
		}
		return p.SetVisibleOverride(ctx, req.Value, req.Priority)
	})

	f.handle(router, ActionClearVisibleOverride, func(ctx context.Context, p *Local, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			Token string `json:"token"`
		}](params)
		if err != nil {
			return nil, err
		}
		return p.ClearVisibleOverride(ctx, req.Token)
	})

	f.handle(router, ActionContainsPoint, func(ctx context.Context, p *Local, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		}](params)
		if err != nil {
			return nil, err
		}
		return p.ContainsPoint(ctx, req.X, req.Y)
	})

	f.handle(router, ActionShowContent, func(ctx context.Context, p *Local, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			Details        types.ShowDetails    `json:"details"`
			DisplayDetails types.DisplayDetails `json:"displayDetails"`
		}](params)
		if err != nil {
			return nil, err
		}
		return nil, p.ShowContent(ctx, req.Details, req.DisplayDetails)
	})

	f.handle(router, ActionSetCustomCSS, func(ctx context.Context, p *Local, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			CSS string `json:"css"`
		}](params)
		if err != nil {
			return nil, err
		}
		return nil, p.SetCustomCSS(ctx, req.CSS)
	})

	f.handle(router, ActionClearAutoPlayTimer, func(ctx context.Context, p *Local, _ json.RawMessage) (any, error) {
		return nil, p.ClearAutoPlayTimer(ctx)
	})

	f.handle(router, ActionSetContentScale, func(ctx context.Context, p *Local, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			Scale float64 `json:"scale"`
		}](params)
		if err != nil {
			return nil, err
		}
		return nil, p.SetContentScale(ctx, req.Scale)
	})

	f.handle(router, ActionUpdateTheme, func(ctx context.Context, p *Local, _ json.RawMessage) (any, error) {
		return nil, p.UpdateTheme(ctx)
	})

	f.handle(router, ActionSetCustomOuterCSS, func(ctx context.Context, p *Local, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			CSS                string `json:"css"`
			UseWebExtensionAPI bool   `json:"useWebExtensionApi"`
		}](params)
		if err != nil {
			return nil, err
		}
		return nil, p.SetCustomOuterCSS(ctx, req.CSS, req.UseWebExtensionAPI)
	})

	f.handle(router, ActionGetFrameSize, func(ctx context.Context, p *Local, _ json.RawMessage) (any, error) {
		return p.FrameSize(ctx)
	})

	f.handle(router, ActionSetFrameSize, func(ctx context.Context, p *Local, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			Width  float64 `json:"width"`
			Height float64 `json:"height"`
		}](params)
		if err != nil {
			return nil, err
		}
		return p.SetFrameSize(ctx, req.Width, req.Height)
	})
}

type popupHandler func(ctx context.Context, p *Local, params json.RawMessage) (any, error)

// handle registers an action that operates on the popup named by params.id
func (f *Factory) handle(router *crossframe.Router, action string, fn popupHandler) {
	router.Handle(action, func(ctx context.Context, params json.RawMessage) (any, error) {
		req, err := crossframe.Decode[struct {
			ID string `json:"id"`
		}](params)
		if err != nil {
			return nil, err
		}
		p, ok := f.Get(req.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPopupNotFound, req.ID)
		}
		return fn(ctx, p, params)
	})
}
