package popup

import (
	"context"
	"testing"

	"github.com/seth-js/yomichan-ru/internal/shared/id"
	"github.com/seth-js/yomichan-ru/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalGeneratesID(t *testing.T) {
	p := NewLocal("", 0, 2)

	assert.True(t, id.IsPrefixed(p.ID(), id.PopupPrefix))
	assert.Equal(t, 2, p.FrameID())
	assert.Equal(t, &Container{ElementID: "popup-frame-" + p.ID(), FrameID: 2}, p.Container())

	size, err := p.FrameSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.Size{Width: DefaultFrameWidth, Height: DefaultFrameHeight, Valid: true}, size)
}

func TestLocalVisibleOverrides(t *testing.T) {
	ctx := context.Background()
	p := NewLocal("p", 0, 0)

	visible, _ := p.IsVisible(ctx)
	assert.False(t, visible)

	low, err := p.SetVisibleOverride(ctx, true, 0)
	require.NoError(t, err)
	require.NotNil(t, low)
	visible, _ = p.IsVisible(ctx)
	assert.True(t, visible)

	high, _ := p.SetVisibleOverride(ctx, false, 10)
	visible, _ = p.IsVisibleSync()
	assert.False(t, visible)

	// Later override wins a tie.
	tie, _ := p.SetVisibleOverride(ctx, true, 10)
	visible, _ = p.IsVisibleSync()
	assert.True(t, visible)

	removed, _ := p.ClearVisibleOverride(ctx, *tie)
	assert.True(t, removed)
	removed, _ = p.ClearVisibleOverride(ctx, *tie)
	assert.False(t, removed)
	visible, _ = p.IsVisibleSync()
	assert.False(t, visible)

	p.ClearVisibleOverride(ctx, *high)
	p.ClearVisibleOverride(ctx, *low)
	visible, _ = p.IsVisibleSync()
	assert.False(t, visible)
}

func TestLocalShowContentPositions(t *testing.T) {
	ctx := context.Background()
	elem := &types.ElementRect{X: 500, Y: 100, Width: 40, Height: 20}

	tests := []struct {
		mode string
		x, y float64
	}{
		{types.WritingModeHorizontalTB, 500, 120},
		{"", 500, 120},
		{types.WritingModeVerticalRL, 100, 100},
		{types.WritingModeVerticalLR, 540, 100},
	}

	for _, tt := range tests {
		p := NewLocal("p", 0, 0)
		err := p.ShowContent(ctx, types.ShowDetails{ElementRect: elem, WritingMode: tt.mode}, nil)
		require.NoError(t, err)

		rect := p.FrameRect()
		assert.Equal(t, tt.x, rect.X, tt.mode)
		assert.Equal(t, tt.y, rect.Y, tt.mode)
		assert.True(t, rect.Valid)
	}
}

func TestLocalShowContentState(t *testing.T) {
	ctx := context.Background()
	p := NewLocal("p", 0, 0)

	oc := types.OptionsContext{Depth: 0, URL: "https://example.com"}
	display := types.DisplayDetails{"autoPlay": true, "content": "entry"}
	require.NoError(t, p.ShowContent(ctx, types.ShowDetails{OptionsContext: &oc}, display))

	got, ok := p.OptionsContext()
	require.True(t, ok)
	assert.Equal(t, oc, got)
	assert.Equal(t, display, p.DisplayDetails())
	assert.True(t, p.AutoPlayPending())
	assert.True(t, p.IsFocused())

	require.NoError(t, p.ClearAutoPlayTimer(ctx))
	assert.False(t, p.AutoPlayPending())
}

func TestLocalContainsPoint(t *testing.T) {
	ctx := context.Background()
	p := NewLocal("p", 0, 0)
	require.NoError(t, p.ShowContent(ctx, types.ShowDetails{ElementRect: &types.ElementRect{X: 0, Y: 0, Height: 10}}, nil))

	inside, _ := p.ContainsPoint(ctx, 10, 20)
	assert.True(t, inside)
	outside, _ := p.ContainsPoint(ctx, 10, 5)
	assert.False(t, outside)

	require.NoError(t, p.Hide(ctx, false))
	inside, _ = p.ContainsPoint(ctx, 10, 20)
	assert.False(t, inside)
}

func TestLocalHideCascadesAndMovesFocus(t *testing.T) {
	ctx := context.Background()
	parent := NewLocal("parent", 0, 0)
	child := NewLocal("child", 1, 0)
	require.NoError(t, child.SetParent(parent))
	require.NoError(t, parent.SetChild(child))

	require.NoError(t, parent.ShowContent(ctx, types.ShowDetails{}, nil))
	require.NoError(t, child.ShowContent(ctx, types.ShowDetails{}, nil))
	require.NoError(t, parent.Hide(ctx, false))

	visible, _ := child.IsVisible(ctx)
	assert.False(t, visible)

	require.NoError(t, parent.ShowContent(ctx, types.ShowDetails{}, nil))
	require.NoError(t, child.ShowContent(ctx, types.ShowDetails{}, nil))
	assert.False(t, parent.IsFocused())
	assert.True(t, child.IsFocused())

	require.NoError(t, child.Hide(ctx, true))
	assert.False(t, child.IsFocused())
	assert.True(t, parent.IsFocused())

	assert.Equal(t, Popup(parent), child.Parent())
	assert.Equal(t, Popup(child), parent.Child())
}

func TestLocalLinksRejectCycles(t *testing.T) {
	a := NewLocal("a", 0, 0)
	b := NewLocal("b", 1, 0)
	c := NewLocal("c", 2, 0)

	require.NoError(t, a.SetChild(b))
	require.NoError(t, b.SetChild(c))
	require.NoError(t, b.SetParent(a))
	require.NoError(t, c.SetParent(b))

	assert.ErrorIs(t, a.SetChild(a), ErrCycle)
	assert.ErrorIs(t, c.SetChild(a), ErrCycle)
	assert.ErrorIs(t, b.SetChild(a), ErrCycle)
	assert.ErrorIs(t, a.SetParent(c), ErrCycle)
	assert.ErrorIs(t, a.SetParent(a), ErrCycle)

	// Hiding still terminates.
	require.NoError(t, a.Hide(context.Background(), false))
	assert.Equal(t, c, b.Child())
}

func TestLocalLinksRejectProxies(t *testing.T) {
	p := NewLocal("p", 0, 0)
	proxy := NewProxy(types.PopupInfo{ID: "remote"}, &mockInvoker{}, nil, nil)

	assert.ErrorIs(t, p.SetParent(proxy), ErrUnsupported)
	assert.ErrorIs(t, p.SetChild(proxy), ErrUnsupported)
	assert.Nil(t, p.Parent())

	require.NoError(t, p.SetParent(nil))
	assert.Nil(t, p.Parent())
}

func TestLocalStylingAndSize(t *testing.T) {
	ctx := context.Background()
	p := NewLocal("p", 0, 0)

	require.NoError(t, p.SetCustomCSS(ctx, "body{}"))
	require.NoError(t, p.SetCustomOuterCSS(ctx, ".outer{}", true))
	require.NoError(t, p.SetContentScale(ctx, 1.5))
	assert.Error(t, p.SetContentScale(ctx, 0))
	require.NoError(t, p.UpdateTheme(ctx))
	require.NoError(t, p.UpdateTheme(ctx))

	assert.Equal(t, Styles{
		CustomCSS:          "body{}",
		CustomOuterCSS:     ".outer{}",
		UseWebExtensionAPI: true,
		ContentScale:       1.5,
		ThemeRevision:      2,
	}, p.Styles())

	ok, _ := p.SetFrameSize(ctx, 320, 180)
	assert.True(t, ok)
	ok, _ = p.SetFrameSize(ctx, -1, 180)
	assert.False(t, ok)
	size, _ := p.FrameSize(ctx)
	assert.Equal(t, types.Size{Width: 320, Height: 180, Valid: true}, size)
}
