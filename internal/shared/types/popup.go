package types

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Offset is a 2D translation between the coordinate spaces of two frames.
// On the wire it is the pair [x, y].
type Offset struct {
	X float64
	Y float64
}

// Apply translates the point (x, y) by the offset
func (o Offset) Apply(x, y float64) (float64, float64) {
	return x + o.X, y + o.Y
}

// Add returns the componentwise sum of two offsets
func (o Offset) Add(other Offset) Offset {
	return Offset{X: o.X + other.X, Y: o.Y + other.Y}
}

// MarshalJSON encodes the offset as [x, y]
func (o Offset) MarshalJSON() ([]byte, error) {
	return sonic.Marshal([2]float64{o.X, o.Y})
}

// UnmarshalJSON decodes an [x, y] pair
func (o *Offset) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := sonic.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("offset must have 2 components, got %d", len(pair))
	}
	o.X, o.Y = pair[0], pair[1]
	return nil
}

// Rect is the geometry of a popup frame. Valid is false when the rect
// cannot be known from the caller's frame.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Valid  bool    `json:"valid"`
}

// Contains reports whether the point lies inside the rect
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Size is the size of a popup frame
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Valid  bool    `json:"valid"`
}

// ElementRect is the bounding box of the source element a popup is shown for
type ElementRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// OptionsContext selects the options profile a popup renders with
type OptionsContext struct {
	Depth     int      `json:"depth"`
	URL       string   `json:"url,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// WritingMode values used when positioning a popup next to text
const (
	WritingModeHorizontalTB = "horizontal-tb"
	WritingModeVerticalRL   = "vertical-rl"
	WritingModeVerticalLR   = "vertical-lr"
)

// ShowDetails positions and configures the outer popup
type ShowDetails struct {
	OptionsContext *OptionsContext `json:"optionsContext,omitempty"`
	ElementRect    *ElementRect    `json:"elementRect,omitempty"`
	WritingMode    string          `json:"writingMode,omitempty"`
}

// DisplayDetails is the content payload rendered inside the popup.
// The host passes it through to the display without interpreting it.
type DisplayDetails map[string]interface{}

// PopupInfo identifies a popup hosted in some frame
type PopupInfo struct {
	ID      string `json:"id"`
	Depth   int    `json:"depth"`
	FrameID int    `json:"frameId"`
}
