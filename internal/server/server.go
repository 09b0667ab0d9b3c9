package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/seth-js/yomichan-ru/internal/api/middleware"
	"github.com/seth-js/yomichan-ru/internal/crossframe"
	"github.com/seth-js/yomichan-ru/internal/crossframe/wsframe"
	"github.com/seth-js/yomichan-ru/internal/domain/popup"
	"github.com/seth-js/yomichan-ru/internal/frameoffset"
	handlers "github.com/seth-js/yomichan-ru/internal/http"
	"github.com/seth-js/yomichan-ru/internal/infrastructure/config"
	"github.com/seth-js/yomichan-ru/internal/infrastructure/logging"
	"github.com/seth-js/yomichan-ru/internal/infrastructure/monitoring"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	handler    http.Handler
	httpServer *http.Server
	hub        *crossframe.Hub
	factory    *popup.Factory
	tree       *frameoffset.Tree
	lifecycle  *crossframe.Lifecycle
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewOrNop(logging.ForHost(cfg))
	}

	logger.Info("Initializing popup host",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("crossframe_path", cfg.CrossFrame.Path),
		zap.Int("root_frame", cfg.CrossFrame.RootFrameID),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	tree, err := loadTree(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Frame tree ready", zap.Ints("frames", tree.Frames()))

	lifecycle := crossframe.NewLifecycle()
	factory := popup.NewFactory(cfg.CrossFrame.RootFrameID).
		WithLogger(logger.Logger).
		WithMetrics(metrics)

	root := crossframe.NewRouter()
	factory.RegisterHandlers(root)
	frameoffset.RegisterHandlers(root, tree)

	hub := crossframe.NewHub().
		WithLogger(logger.Logger).
		WithMetrics(metrics)
	hub.Attach(cfg.CrossFrame.RootFrameID, root)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.ExtensionCORSConfig(cfg.CrossFrame.AllowedOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	h := handlers.NewHandlers(factory, hub, tree, lifecycle)
	wsHandler := wsframe.NewHandler(hub).
		WithLogger(logger.Logger).
		WithMetrics(metrics).
		WithAllowedOrigins(cfg.CrossFrame.AllowedOrigins)

	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	router.GET("/popups", h.ListPopups)
	router.POST("/popups", h.CreatePopup)
	router.GET("/popups/:id", h.GetPopup)
	router.GET("/frames", h.ListFrames)

	router.GET(cfg.CrossFrame.Path, wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		Registry:           registry,
		DisableCompression: true,
	})))

	logger.Info("Server initialized successfully")

	handler := compress(router, cfg.CrossFrame.Path)

	return &Server{
		handler: handler,
		httpServer: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		hub:       hub,
		factory:   factory,
		tree:      tree,
		lifecycle: lifecycle,
		logger:    logger,
		config:    cfg,
		metrics:   metrics,
	}, nil
}

// compress gzips responses except on the websocket endpoint, whose
// connection is hijacked.
func compress(h http.Handler, wsPath string) http.Handler {
	gz := gzhttp.GzipHandler(h)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == wsPath {
			h.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

func loadTree(cfg *config.Config) (*frameoffset.Tree, error) {
	if cfg.Frames.LayoutFile == "" {
		return frameoffset.NewTree(cfg.CrossFrame.RootFrameID), nil
	}
	tree, err := frameoffset.LoadLayout(cfg.Frames.LayoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load frame layout: %w", err)
	}
	return tree, nil
}

// Handler returns the HTTP handler of the host
func (s *Server) Handler() http.Handler { return s.handler }

// Hub returns the in-process invoker of the host
func (s *Server) Hub() *crossframe.Hub { return s.hub }

// Factory returns the popup factory of the root frame
func (s *Server) Factory() *popup.Factory { return s.factory }

// Lifecycle returns the unload state of the host
func (s *Server) Lifecycle() *crossframe.Lifecycle { return s.lifecycle }

// Run serves HTTP until Shutdown is called
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown marks the host unloaded and stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	s.lifecycle.MarkUnloaded()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
	}
	if syncErr := s.logger.Sync(); syncErr != nil && err == nil {
		err = syncErr
	}
	return err
}
