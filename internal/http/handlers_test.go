package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/seth-js/yomichan-ru/internal/crossframe"
	"github.com/seth-js/yomichan-ru/internal/domain/popup"
	"github.com/seth-js/yomichan-ru/internal/frameoffset"
	"github.com/seth-js/yomichan-ru/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, *popup.Factory, *crossframe.Lifecycle) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tree := frameoffset.NewTree(0)
	require.NoError(t, tree.Register(2, 0, 15, 25))
	factory := popup.NewFactory(0)
	hub := crossframe.NewHub()
	hub.Attach(0, crossframe.NewRouter())
	lifecycle := crossframe.NewLifecycle()

	h := NewHandlers(factory, hub, tree, lifecycle)
	router := gin.New()
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/popups", h.ListPopups)
	router.POST("/popups", h.CreatePopup)
	router.GET("/popups/:id", h.GetPopup)
	router.GET("/frames", h.ListFrames)
	return router, factory, lifecycle
}

func do(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router, _, lifecycle := setupRouter(t)

	w := do(router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","popups":0,"frames":[0]}`, w.Body.String())

	lifecycle.MarkUnloaded()
	w = do(router, "GET", "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCreateAndGetPopup(t *testing.T) {
	router, factory, _ := setupRouter(t)

	w := do(router, "POST", "/popups", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var info types.PopupInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, 0, info.Depth)

	w = do(router, "POST", "/popups", []byte(`{"parentPopupId":"`+info.ID+`"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, "POST", "/popups", []byte(`{"parentPopupId":"`+info.ID+`"}`))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(router, "POST", "/popups", []byte(`{"parentPopupId":"missing"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, "POST", "/popups", []byte(`{bad`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "GET", "/popups/"+info.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"visible":false`)

	w = do(router, "GET", "/popups/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, "GET", "/popups", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Popups []types.PopupInfo `json:"popups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Popups, len(factory.Popups()))
	assert.Len(t, list.Popups, 2)
}

func TestListFrames(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := do(router, "GET", "/frames", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"frames": [{"frameId":0,"offset":[0,0]},{"frameId":2,"offset":[15,25]}],
		"attached": [0]
	}`, w.Body.String())
}
