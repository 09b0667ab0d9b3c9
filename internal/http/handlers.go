package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seth-js/yomichan-ru/internal/crossframe"
	"github.com/seth-js/yomichan-ru/internal/domain/popup"
	"github.com/seth-js/yomichan-ru/internal/frameoffset"
)

// Version of the popup host API
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	factory   *popup.Factory
	hub       *crossframe.Hub
	tree      *frameoffset.Tree
	lifecycle *crossframe.Lifecycle
}

// NewHandlers creates a new handler set
func NewHandlers(
	factory *popup.Factory,
	hub *crossframe.Hub,
	tree *frameoffset.Tree,
	lifecycle *crossframe.Lifecycle,
) *Handlers {
	return &Handlers{
		factory:   factory,
		hub:       hub,
		tree:      tree,
		lifecycle: lifecycle,
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "popup host",
		"version": Version,
	})
}

// Health reports the host state. An unloading host answers 503 so that
// load balancers stop routing frames to it.
func (h *Handlers) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if h.lifecycle.IsUnloaded() {
		status, code = "unloading", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status": status,
		"popups": len(h.factory.Popups()),
		"frames": h.hub.Frames(),
	})
}

// ListPopups lists the hosted popups
func (h *Handlers) ListPopups(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"popups": h.factory.Popups(),
	})
}

// CreatePopup gets or creates a popup, like PopupFactory.getOrCreatePopup
func (h *Handlers) CreatePopup(c *gin.Context) {
	var req popup.CreateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	p, err := h.factory.GetOrCreatePopup(req)
	switch {
	case errors.Is(err, popup.ErrPopupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, popup.ErrHasChild):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, p.Info())
}

// GetPopup returns the state of one popup
func (h *Handlers) GetPopup(c *gin.Context) {
	p, ok := h.factory.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "popup not found"})
		return
	}

	visible, _ := p.IsVisibleSync()
	c.JSON(http.StatusOK, gin.H{
		"popup":   p.Info(),
		"visible": visible,
		"rect":    p.FrameRect(),
		"styles":  p.Styles(),
	})
}

// ListFrames reports the known frames and their offsets from the root
func (h *Handlers) ListFrames(c *gin.Context) {
	frames := make([]gin.H, 0)
	for _, id := range h.tree.Frames() {
		entry := gin.H{"frameId": id}
		if offset, ok := h.tree.Offset(id); ok {
			entry["offset"] = offset
		}
		frames = append(frames, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"frames":   frames,
		"attached": h.hub.Frames(),
	})
}
