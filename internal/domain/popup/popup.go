package popup

import (
	"context"
	"errors"

	"github.com/seth-js/yomichan-ru/internal/shared/types"
)

var (
	ErrUnsupported   = errors.New("not supported on popup proxy")
	ErrPopupNotFound = errors.New("popup not found")
	ErrHasChild      = errors.New("parent popup already has a child")
	ErrCycle         = errors.New("popup link would form a cycle")
)

// EventOffsetNotFound is triggered on a Proxy when its frame offset cannot be determined
const EventOffsetNotFound = "offsetNotFound"

// Actions served by a Factory
const (
	ActionGetOrCreatePopup     = "PopupFactory.getOrCreatePopup"
	ActionSetOptionsContext    = "PopupFactory.setOptionsContext"
	ActionHide                 = "PopupFactory.hide"
	ActionIsVisible            = "PopupFactory.isVisible"
	ActionSetVisibleOverride   = "PopupFactory.setVisibleOverride"
	ActionClearVisibleOverride = "PopupFactory.clearVisibleOverride"
	ActionContainsPoint        = "PopupFactory.containsPoint"
	ActionShowContent          = "PopupFactory.showContent"
	ActionSetCustomCSS         = "PopupFactory.setCustomCss"
	ActionClearAutoPlayTimer   = "PopupFactory.clearAutoPlayTimer"
	ActionSetContentScale      = "PopupFactory.setContentScale"
	ActionUpdateTheme          = "PopupFactory.updateTheme"
	ActionSetCustomOuterCSS    = "PopupFactory.setCustomOuterCss"
	ActionGetFrameSize         = "PopupFactory.getFrameSize"
	ActionSetFrameSize         = "PopupFactory.setFrameSize"
)

// Popup is the operation surface shared by local popups and proxies
type Popup interface {
	ID() string
	Depth() int
	FrameID() int

	Parent() Popup
	SetParent(parent Popup) error
	Child() Popup
	SetChild(child Popup) error
	Container() *Container

	SetOptionsContext(ctx context.Context, optionsContext types.OptionsContext) error
	Hide(ctx context.Context, changeFocus bool) error
	IsVisible(ctx context.Context) (bool, error)
	SetVisibleOverride(ctx context.Context, value bool, priority int) (*string, error)
	ClearVisibleOverride(ctx context.Context, token string) (bool, error)
	ContainsPoint(ctx context.Context, x, y float64) (bool, error)
	ShowContent(ctx context.Context, details types.ShowDetails, displayDetails types.DisplayDetails) error
	SetCustomCSS(ctx context.Context, css string) error
	ClearAutoPlayTimer(ctx context.Context) error
	SetContentScale(ctx context.Context, scale float64) error
	IsVisibleSync() (bool, error)
	UpdateTheme(ctx context.Context) error
	SetCustomOuterCSS(ctx context.Context, css string, useWebExtensionAPI bool) error
	FrameRect() types.Rect
	FrameSize(ctx context.Context) (types.Size, error)
	SetFrameSize(ctx context.Context, width, height float64) (bool, error)
}

// UnloadState reports whether the host is shutting down
type UnloadState interface {
	IsUnloaded() bool
}

// Container describes the element that hosts a popup frame
type Container struct {
	ElementID string `json:"elementId"`
	FrameID   int    `json:"frameId"`
}
