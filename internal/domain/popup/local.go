package popup

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/seth-js/yomichan-ru/internal/shared/id"
	"github.com/seth-js/yomichan-ru/internal/shared/types"
)

// Default frame size of a newly created popup
const (
	DefaultFrameWidth  = 400
	DefaultFrameHeight = 250
)

type visibleOverride struct {
	token    string
	value    bool
	priority int
	seq      uint64
}

// Local is a popup rendered in the current frame
type Local struct {
	id      string
	depth   int
	frameID int

	mu                 sync.RWMutex
	parent             *Local // Protected by mu
	child              *Local // Protected by mu
	visible            bool   // Protected by mu
	focused            bool   // Protected by mu
	overrides          []visibleOverride
	overrideSeq        uint64
	optionsContext     *types.OptionsContext
	rect               types.Rect
	displayDetails     types.DisplayDetails
	customCSS          string
	customOuterCSS     string
	useWebExtensionAPI bool
	contentScale       float64
	themeRevision      int
	autoPlayPending    bool
}

// NewLocal creates a hidden popup in frameID. An empty popupID gets a
// generated one.
func NewLocal(popupID string, depth, frameID int) *Local {
	if popupID == "" {
		popupID = id.NewPopupID().String()
	}
	return &Local{
		id:           popupID,
		depth:        depth,
		frameID:      frameID,
		rect:         types.Rect{Width: DefaultFrameWidth, Height: DefaultFrameHeight, Valid: true},
		contentScale: 1,
	}
}

func (l *Local) ID() string   { return l.id }
func (l *Local) Depth() int   { return l.depth }
func (l *Local) FrameID() int { return l.frameID }

func (l *Local) Parent() Popup {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.parent == nil {
		return nil
	}
	return l.parent
}

// SetParent links l below parent. Only popups of the same frame can be linked.
func (l *Local) SetParent(parent Popup) error {
	p, err := asLocal(parent)
	if err != nil {
		return err
	}
	if p != nil && (reaches(p, l, (*Local).parentLocal) || reaches(l, p, (*Local).childLocal)) {
		return fmt.Errorf("%w: %s under %s", ErrCycle, l.id, p.id)
	}
	l.mu.Lock()
	l.parent = p
	l.mu.Unlock()
	return nil
}

func (l *Local) Child() Popup {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.child == nil {
		return nil
	}
	return l.child
}

// SetChild links child below l. Only popups of the same frame can be linked.
func (l *Local) SetChild(child Popup) error {
	c, err := asLocal(child)
	if err != nil {
		return err
	}
	if c != nil && (reaches(c, l, (*Local).childLocal) || reaches(l, c, (*Local).parentLocal)) {
		return fmt.Errorf("%w: %s under %s", ErrCycle, c.id, l.id)
	}
	l.mu.Lock()
	l.child = c
	l.mu.Unlock()
	return nil
}

func (l *Local) Container() *Container {
	return &Container{ElementID: "popup-frame-" + l.id, FrameID: l.frameID}
}

func (l *Local) SetOptionsContext(_ context.Context, optionsContext types.OptionsContext) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.optionsContext = &optionsContext
	return nil
}

// OptionsContext returns the options context last set on the popup
func (l *Local) OptionsContext() (types.OptionsContext, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.optionsContext == nil {
		return types.OptionsContext{}, false
	}
	return *l.optionsContext, true
}

// Hide hides l and its children. With changeFocus the parent popup takes
// the focus back.
func (l *Local) Hide(ctx context.Context, changeFocus bool) error {
	l.mu.RLock()
	child, parent := l.child, l.parent
	l.mu.RUnlock()

	if child != nil {
		if err := child.Hide(ctx, false); err != nil {
			return err
		}
	}

	l.mu.Lock()
	l.visible = false
	l.autoPlayPending = false
	wasFocused := l.focused
	if changeFocus {
		l.focused = false
	}
	l.mu.Unlock()

	if changeFocus && wasFocused && parent != nil {
		parent.mu.Lock()
		parent.focused = true
		parent.mu.Unlock()
	}
	return nil
}

// IsFocused reports whether l holds the focus among its popup chain
func (l *Local) IsFocused() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.focused
}

func (l *Local) IsVisible(context.Context) (bool, error) {
	return l.IsVisibleSync()
}

// IsVisibleSync resolves the visibility from the overrides, falling back to
// the base flag. The highest priority wins; among equal priorities the most
// recent override wins.
func (l *Local) IsVisibleSync() (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.isVisibleLocked(), nil
}

func (l *Local) isVisibleLocked() bool {
	if len(l.overrides) == 0 {
		return l.visible
	}
	best := l.overrides[0]
	for _, o := range l.overrides[1:] {
		if o.priority > best.priority || (o.priority == best.priority && o.seq > best.seq) {
			best = o
		}
	}
	return best.value
}

func (l *Local) SetVisibleOverride(_ context.Context, value bool, priority int) (*string, error) {
	token := id.NewOverrideToken().String()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.overrideSeq++
	l.overrides = append(l.overrides, visibleOverride{
		token:    token,
		value:    value,
		priority: priority,
		seq:      l.overrideSeq,
	})
	return &token, nil
}

func (l *Local) ClearVisibleOverride(_ context.Context, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, o := range l.overrides {
		if o.token == token {
			l.overrides = append(l.overrides[:i:i], l.overrides[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ContainsPoint reports whether (x, y) is inside the frame of a visible popup
func (l *Local) ContainsPoint(_ context.Context, x, y float64) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.isVisibleLocked() && l.rect.Contains(x, y), nil
}

// ShowContent places the popup next to the element rect and shows it. The
// popup takes the focus from its parent.
func (l *Local) ShowContent(_ context.Context, details types.ShowDetails, displayDetails types.DisplayDetails) error {
	l.show(details, displayDetails)

	l.mu.RLock()
	parent := l.parent
	l.mu.RUnlock()
	if parent != nil {
		parent.mu.Lock()
		parent.focused = false
		parent.mu.Unlock()
	}
	return nil
}

func (l *Local) show(details types.ShowDetails, displayDetails types.DisplayDetails) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if details.OptionsContext != nil {
		oc := *details.OptionsContext
		l.optionsContext = &oc
	}
	if er := details.ElementRect; er != nil {
		switch details.WritingMode {
		case types.WritingModeVerticalRL:
			l.rect.X, l.rect.Y = er.X-l.rect.Width, er.Y
		case types.WritingModeVerticalLR:
			l.rect.X, l.rect.Y = er.X+er.Width, er.Y
		default:
			l.rect.X, l.rect.Y = er.X, er.Y+er.Height
		}
	}

	l.displayDetails = displayDetails
	autoPlay, _ := displayDetails["autoPlay"].(bool)
	l.autoPlayPending = autoPlay
	l.visible = true
	l.focused = true
}

// DisplayDetails returns the content last shown
func (l *Local) DisplayDetails() types.DisplayDetails {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.displayDetails
}

func (l *Local) SetCustomCSS(_ context.Context, css string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.customCSS = css
	return nil
}

func (l *Local) ClearAutoPlayTimer(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.autoPlayPending = false
	return nil
}

// AutoPlayPending reports whether audio auto-play is still scheduled
func (l *Local) AutoPlayPending() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.autoPlayPending
}

func (l *Local) SetContentScale(_ context.Context, scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("invalid content scale %v", scale)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.contentScale = scale
	return nil
}

func (l *Local) UpdateTheme(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.themeRevision++
	return nil
}

func (l *Local) SetCustomOuterCSS(_ context.Context, css string, useWebExtensionAPI bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.customOuterCSS = css
	l.useWebExtensionAPI = useWebExtensionAPI
	return nil
}

// Styles returns the state set by the styling operations
func (l *Local) Styles() Styles {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Styles{
		CustomCSS:          l.customCSS,
		CustomOuterCSS:     l.customOuterCSS,
		UseWebExtensionAPI: l.useWebExtensionAPI,
		ContentScale:       l.contentScale,
		ThemeRevision:      l.themeRevision,
	}
}

// Styles is a snapshot of the styling state of a Local popup
type Styles struct {
	CustomCSS          string  `json:"customCss"`
	CustomOuterCSS     string  `json:"customOuterCss"`
	UseWebExtensionAPI bool    `json:"useWebExtensionApi"`
	ContentScale       float64 `json:"contentScale"`
	ThemeRevision      int     `json:"themeRevision"`
}

func (l *Local) FrameRect() types.Rect {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rect
}

func (l *Local) FrameSize(context.Context) (types.Size, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return types.Size{Width: l.rect.Width, Height: l.rect.Height, Valid: true}, nil
}

// SetFrameSize resizes the frame. Non-positive sizes are refused.
func (l *Local) SetFrameSize(_ context.Context, width, height float64) (bool, error) {
	if width <= 0 || height <= 0 {
		return false, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rect.Width, l.rect.Height = width, height
	return true, nil
}

// Info describes l for other frames
func (l *Local) Info() types.PopupInfo {
	return types.PopupInfo{ID: l.id, Depth: l.depth, FrameID: l.frameID}
}

func (l *Local) parentLocal() *Local {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.parent
}

func (l *Local) childLocal() *Local {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.child
}

// reaches reports whether target is from or lies on the chain next walks
func reaches(from, target *Local, next func(*Local) *Local) bool {
	for n := from; n != nil; n = next(n) {
		if n == target {
			return true
		}
	}
	return false
}

func asLocal(p Popup) (*Local, error) {
	if p == nil {
		return nil, nil
	}
	local, ok := p.(*Local)
	if !ok {
		return nil, fmt.Errorf("%w: popups must be hosted in the same frame", ErrUnsupported)
	}
	return local, nil
}

func sortInfos(infos []types.PopupInfo) {
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
}

var _ Popup = (*Local)(nil)
