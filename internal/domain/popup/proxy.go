package popup

import (
	"context"
	"encoding/json"
	"time"

	"github.com/seth-js/yomichan-ru/internal/crossframe"
	"github.com/seth-js/yomichan-ru/internal/frameoffset"
	"github.com/seth-js/yomichan-ru/internal/infrastructure/monitoring"
	"github.com/seth-js/yomichan-ru/internal/shared/events"
	"github.com/seth-js/yomichan-ru/internal/shared/types"
	"go.uber.org/zap"
)

// Proxy is a handle to a popup owned by another frame
type Proxy struct {
	id      string
	depth   int
	frameID int

	invoker crossframe.Invoker
	unload  UnloadState
	offsets *offsetCache // nil when no offset source is configured
	events  *events.Dispatcher
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewProxy creates a handle for the popup described by info. Coordinates are
// not translated when source is nil. A nil unload never reports unloading.
func NewProxy(info types.PopupInfo, invoker crossframe.Invoker, source frameoffset.Source, unload UnloadState) *Proxy {
	p := &Proxy{
		id:      info.ID,
		depth:   info.Depth,
		frameID: info.FrameID,
		invoker: invoker,
		unload:  unload,
		events:  events.NewDispatcher(),
		logger:  zap.NewNop(),
	}
	if source != nil {
		p.offsets = newOffsetCache(source)
		p.offsets.notFound = func() { p.events.Trigger(EventOffsetNotFound) }
	}
	return p
}

// WithLogger sets the logger
func (p *Proxy) WithLogger(logger *zap.Logger) *Proxy {
	if logger == nil {
		return p
	}
	p.logger = logger
	if p.offsets != nil {
		p.offsets.logger = logger
	}
	return p
}

// WithMetrics adds metrics collection
func (p *Proxy) WithMetrics(metrics *monitoring.Metrics) *Proxy {
	p.metrics = metrics
	if p.offsets != nil {
		p.offsets.metrics = metrics
	}
	return p
}

// WithOffsetTTL sets how long a frame offset is trusted
func (p *Proxy) WithOffsetTTL(ttl time.Duration) *Proxy {
	if p.offsets != nil && ttl > 0 {
		p.offsets.ttl = ttl
	}
	return p
}

// WithClock replaces the time source of the offset cache
func (p *Proxy) WithClock(now func() time.Time) *Proxy {
	if p.offsets != nil && now != nil {
		p.offsets.now = now
	}
	return p
}

// OnOffsetNotFound registers fn to run when the frame offset lookup comes back empty
func (p *Proxy) OnOffsetNotFound(fn func()) events.Subscription {
	return p.events.On(EventOffsetNotFound, fn)
}

func (p *Proxy) ID() string   { return p.id }
func (p *Proxy) Depth() int   { return p.depth }
func (p *Proxy) FrameID() int { return p.frameID }

// Parent is always nil; a parent would live in another frame
func (p *Proxy) Parent() Popup { return nil }

// Child is always nil; a child would live in another frame
func (p *Proxy) Child() Popup { return nil }

func (p *Proxy) SetParent(Popup) error { return ErrUnsupported }
func (p *Proxy) SetChild(Popup) error  { return ErrUnsupported }

// Container is nil since the hosting element lives in another frame
func (p *Proxy) Container() *Container { return nil }

// IsVisibleSync cannot be answered without a round trip
func (p *Proxy) IsVisibleSync() (bool, error) { return false, ErrUnsupported }

// FrameRect reports an invalid rect; the frame geometry is not known here
func (p *Proxy) FrameRect() types.Rect { return types.Rect{} }

func (p *Proxy) SetOptionsContext(ctx context.Context, optionsContext types.OptionsContext) error {
	return p.invokeVoid(ctx, ActionSetOptionsContext, crossframe.Params{"optionsContext": optionsContext})
}

func (p *Proxy) Hide(ctx context.Context, changeFocus bool) error {
	return p.invokeVoid(ctx, ActionHide, crossframe.Params{"changeFocus": changeFocus})
}

func (p *Proxy) IsVisible(ctx context.Context) (bool, error) {
	return invokeSafe(ctx, p, ActionIsVisible, crossframe.Params{}, false)
}

// SetVisibleOverride returns a token for ClearVisibleOverride, or nil when
// the override was not assigned
func (p *Proxy) SetVisibleOverride(ctx context.Context, value bool, priority int) (*string, error) {
	return invokeSafe[*string](ctx, p, ActionSetVisibleOverride, crossframe.Params{"value": value, "priority": priority}, nil)
}

func (p *Proxy) ClearVisibleOverride(ctx context.Context, token string) (bool, error) {
	return invokeSafe(ctx, p, ActionClearVisibleOverride, crossframe.Params{"token": token}, false)
}

// ContainsPoint translates (x, y) into the owner's frame before asking it
func (p *Proxy) ContainsPoint(ctx context.Context, x, y float64) (bool, error) {
	if p.offsets != nil {
		if err := p.offsets.refresh(ctx); err != nil {
			return false, p.fail(ActionContainsPoint, err)
		}
		x, y = p.offsets.apply(x, y)
	}
	return invokeSafe(ctx, p, ActionContainsPoint, crossframe.Params{"x": x, "y": y}, false)
}

// ShowContent translates the element rect into the owner's frame and shows
// the popup there. The caller's rect is not modified.
func (p *Proxy) ShowContent(ctx context.Context, details types.ShowDetails, displayDetails types.DisplayDetails) error {
	if details.ElementRect != nil && p.offsets != nil {
		if err := p.offsets.refresh(ctx); err != nil {
			return p.fail(ActionShowContent, err)
		}
		rect := *details.ElementRect
		rect.X, rect.Y = p.offsets.apply(rect.X, rect.Y)
		details.ElementRect = &rect
	}
	return p.invokeVoid(ctx, ActionShowContent, crossframe.Params{"details": details, "displayDetails": displayDetails})
}

func (p *Proxy) SetCustomCSS(ctx context.Context, css string) error {
	return p.invokeVoid(ctx, ActionSetCustomCSS, crossframe.Params{"css": css})
}

func (p *Proxy) ClearAutoPlayTimer(ctx context.Context) error {
	return p.invokeVoid(ctx, ActionClearAutoPlayTimer, crossframe.Params{})
}

func (p *Proxy) SetContentScale(ctx context.Context, scale float64) error {
	return p.invokeVoid(ctx, ActionSetContentScale, crossframe.Params{"scale": scale})
}

func (p *Proxy) UpdateTheme(ctx context.Context) error {
	return p.invokeVoid(ctx, ActionUpdateTheme, crossframe.Params{})
}

func (p *Proxy) SetCustomOuterCSS(ctx context.Context, css string, useWebExtensionAPI bool) error {
	return p.invokeVoid(ctx, ActionSetCustomOuterCSS, crossframe.Params{"css": css, "useWebExtensionApi": useWebExtensionAPI})
}

func (p *Proxy) FrameSize(ctx context.Context) (types.Size, error) {
	return invokeSafe(ctx, p, ActionGetFrameSize, crossframe.Params{}, types.Size{})
}

func (p *Proxy) SetFrameSize(ctx context.Context, width, height float64) (bool, error) {
	return invokeSafe(ctx, p, ActionSetFrameSize, crossframe.Params{"width": width, "height": height}, false)
}

func (p *Proxy) invokeVoid(ctx context.Context, action string, params crossframe.Params) error {
	_, err := invokeSafe[json.RawMessage](ctx, p, action, params, nil)
	return err
}

// invokeSafe forwards action to the owning frame. Failures are returned
// unless the host is unloading, in which case fallback is returned.
func invokeSafe[T any](ctx context.Context, p *Proxy, action string, params crossframe.Params, fallback T) (T, error) {
	params["id"] = p.id
	timer := monitoring.NewTimer(p.metrics, action)

	raw, err := p.invoker.Invoke(ctx, p.frameID, action, params)
	if err == nil {
		var out T
		if out, err = crossframe.Decode[T](raw); err == nil {
			timer.Stop(monitoring.StatusOK)
			return out, nil
		}
	}

	if err = p.fail(action, err); err == nil {
		timer.Stop(monitoring.StatusSuppressed)
		return fallback, nil
	}

	timer.Stop(monitoring.StatusError)
	var zero T
	return zero, err
}

// fail returns err, or nil when the host is unloading and the failure of
// action is to be dropped.
func (p *Proxy) fail(action string, err error) error {
	if p.unload == nil || !p.unload.IsUnloaded() {
		return err
	}
	p.logger.Debug("dropping popup call during unload",
		zap.String("popup_id", p.id),
		zap.String("action", action),
		zap.Error(err))
	return nil
}

var _ Popup = (*Proxy)(nil)
