package popup

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/seth-js/yomichan-ru/internal/crossframe"
	"github.com/seth-js/yomichan-ru/internal/crossframe/wsframe"
	"github.com/seth-js/yomichan-ru/internal/frameoffset"
	"github.com/seth-js/yomichan-ru/internal/infrastructure/monitoring"
	"github.com/seth-js/yomichan-ru/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestFactoryGetOrCreate(t *testing.T) {
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	f := NewFactory(0).WithMetrics(metrics)

	root, err := f.GetOrCreatePopup(CreateRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, root.Depth())

	same, err := f.GetOrCreatePopup(CreateRequest{ID: strPtr(root.ID())})
	require.NoError(t, err)
	assert.Same(t, root, same)

	child, err := f.GetOrCreatePopup(CreateRequest{ParentPopupID: strPtr(root.ID()), Depth: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 1, child.Depth())
	assert.Equal(t, Popup(root), child.Parent())
	assert.Equal(t, Popup(child), root.Child())

	_, err = f.GetOrCreatePopup(CreateRequest{ParentPopupID: strPtr(root.ID())})
	assert.ErrorIs(t, err, ErrHasChild)

	_, err = f.GetOrCreatePopup(CreateRequest{ParentPopupID: strPtr("missing")})
	assert.ErrorIs(t, err, ErrPopupNotFound)

	named, err := f.GetOrCreatePopup(CreateRequest{ID: strPtr("custom"), Depth: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, "custom", named.ID())
	assert.Equal(t, 2, named.Depth())

	assert.Len(t, f.Popups(), 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.PopupsHosted))
}

func TestFactoryUnknownPopup(t *testing.T) {
	router := crossframe.NewRouter()
	NewFactory(0).RegisterHandlers(router)

	_, err := router.Dispatch(context.Background(), ActionHide, []byte(`{"id":"nope","changeFocus":false}`))
	assert.ErrorIs(t, err, ErrPopupNotFound)
}

func TestFactoryRegistersEveryAction(t *testing.T) {
	router := crossframe.NewRouter()
	NewFactory(0).RegisterHandlers(router)

	assert.ElementsMatch(t, []string{
		ActionGetOrCreatePopup,
		ActionSetOptionsContext,
		ActionHide,
		ActionIsVisible,
		ActionSetVisibleOverride,
		ActionClearVisibleOverride,
		ActionContainsPoint,
		ActionShowContent,
		ActionSetCustomCSS,
		ActionClearAutoPlayTimer,
		ActionSetContentScale,
		ActionUpdateTheme,
		ActionSetCustomOuterCSS,
		ActionGetFrameSize,
		ActionSetFrameSize,
	}, router.Actions())
}

// host wires a factory and a frame tree into the root frame of a hub
func newHost(t *testing.T) (*crossframe.Hub, *Factory) {
	t.Helper()

	tree := frameoffset.NewTree(0)
	require.NoError(t, tree.Register(3, 0, 100, 50))

	factory := NewFactory(0)
	router := crossframe.NewRouter()
	factory.RegisterHandlers(router)
	frameoffset.RegisterHandlers(router, tree)

	hub := crossframe.NewHub()
	hub.Attach(0, router)
	return hub, factory
}

func exerciseProxy(t *testing.T, invoker crossframe.Invoker, factory *Factory) {
	t.Helper()
	ctx := context.Background()

	raw, err := invoker.Invoke(ctx, 0, ActionGetOrCreatePopup, crossframe.Params{})
	require.NoError(t, err)
	info, err := crossframe.Decode[types.PopupInfo](raw)
	require.NoError(t, err)

	lifecycle := crossframe.NewLifecycle()
	proxy := NewProxy(info, invoker, frameoffset.NewForwarder(invoker, 0, 3), lifecycle)

	err = proxy.ShowContent(ctx, types.ShowDetails{
		OptionsContext: &types.OptionsContext{Depth: 0},
		ElementRect:    &types.ElementRect{X: 10, Y: 10, Width: 50, Height: 20},
	}, types.DisplayDetails{"content": "terms"})
	require.NoError(t, err)

	local, ok := factory.Get(info.ID)
	require.True(t, ok)
	rect := local.FrameRect()
	assert.Equal(t, 110.0, rect.X)
	assert.Equal(t, 80.0, rect.Y)

	visible, err := proxy.IsVisible(ctx)
	require.NoError(t, err)
	assert.True(t, visible)

	inside, err := proxy.ContainsPoint(ctx, 20, 40)
	require.NoError(t, err)
	assert.True(t, inside)

	token, err := proxy.SetVisibleOverride(ctx, false, 1)
	require.NoError(t, err)
	require.NotNil(t, token)
	visible, _ = proxy.IsVisible(ctx)
	assert.False(t, visible)
	cleared, err := proxy.ClearVisibleOverride(ctx, *token)
	require.NoError(t, err)
	assert.True(t, cleared)

	resized, err := proxy.SetFrameSize(ctx, 300, 200)
	require.NoError(t, err)
	assert.True(t, resized)
	size, err := proxy.FrameSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.Size{Width: 300, Height: 200, Valid: true}, size)

	require.NoError(t, proxy.SetCustomCSS(ctx, "body{}"))
	require.NoError(t, proxy.SetCustomOuterCSS(ctx, ".o{}", false))
	require.NoError(t, proxy.SetContentScale(ctx, 2))
	require.NoError(t, proxy.UpdateTheme(ctx))
	assert.Equal(t, Styles{CustomCSS: "body{}", CustomOuterCSS: ".o{}", ContentScale: 2, ThemeRevision: 1}, local.Styles())

	require.NoError(t, proxy.Hide(ctx, false))
	visible, _ = proxy.IsVisible(ctx)
	assert.False(t, visible)

	// Errors from the owner propagate while loaded and vanish once unloading.
	missing := NewProxy(types.PopupInfo{ID: "missing"}, invoker, nil, lifecycle)
	_, err = missing.IsVisible(ctx)
	var remote *crossframe.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Contains(t, remote.Message, "popup not found")

	lifecycle.MarkUnloaded()
	visible, err = missing.IsVisible(ctx)
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestProxyAgainstFactoryInProcess(t *testing.T) {
	hub, factory := newHost(t)
	exerciseProxy(t, hub, factory)
}

func TestProxyAgainstFactoryOverWebsocket(t *testing.T) {
	hub, factory := newHost(t)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/crossframe", wsframe.NewHandler(hub).HandleConnection)
	server := httptest.NewServer(engine)
	defer server.Close()

	client, err := wsframe.Dial(context.Background(), "ws"+strings.TrimPrefix(server.URL, "http")+"/crossframe", nil)
	require.NoError(t, err)
	defer client.Close()

	exerciseProxy(t, client, factory)
}
