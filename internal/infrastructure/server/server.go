package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/asc2563/regression-thing/internal/api/middleware"
	rest "github.com/asc2563/regression-thing/internal/http"
	"github.com/asc2563/regression-thing/internal/infrastructure/config"
	"github.com/asc2563/regression-thing/internal/infrastructure/logging"
	"github.com/asc2563/regression-thing/internal/infrastructure/monitoring"
	"github.com/asc2563/regression-thing/internal/infrastructure/tracing"
	"github.com/asc2563/regression-thing/internal/ipc"
	"github.com/asc2563/regression-thing/internal/providers/filesystem"
	"github.com/asc2563/regression-thing/internal/providers/terminal"
	"github.com/asc2563/regression-thing/internal/ws"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	bridge     *terminal.Bridge
	tracer     *tracing.Tracer
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a server with a logger built from cfg
func NewServer(cfg *config.Config) (*Server, error) {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Development = cfg.Logging.Development

	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return New(cfg, logger), nil
}

// New wires every component of the host around the given logger
func New(cfg *config.Config, logger *logging.Logger) *Server {
	logger.Info("Initializing host bridge",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.Bool("pty", cfg.Shell.UsePTY),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("host", logger.Logger)

	files := filesystem.NewService(logger.Logger, metrics)
	bridge := terminal.NewBridge(cfg.Shell, logger.Logger, metrics)
	ipcRouter := ipc.NewRouter(files, bridge, tracer, logger.Logger, metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins)))
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

	handlers := rest.NewHandlers(files, bridge, metrics)
	wsHandler := ws.NewHandler(ipcRouter, logger.Logger, metrics, allowOrigin(cfg.Server.CORSOrigins))

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Message channel
	router.GET("/ipc", wsHandler.HandleConnection)

	// File operations
	router.POST("/files/write", handlers.WriteFile)
	router.POST("/files/read", handlers.ReadFile)
	router.POST("/files/delete", handlers.DeleteFile)
	router.POST("/files/rename", handlers.RenameFile)
	router.POST("/files/list", handlers.ListFiles)

	// Shell
	router.POST("/terminal/input", handlers.TerminalInput)
	router.GET("/terminal/status", handlers.TerminalStatus)
	router.POST("/terminal/resize", handlers.TerminalResize)

	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
		bridge:  bridge,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}
}

// allowOrigin admits configured origins and any loopback origin
func allowOrigin(origins []string) func(string) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(origin string) bool {
		if _, ok := allowed[origin]; ok {
			return true
		}
		return middleware.IsLoopbackOrigin(origin)
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then kills the shell
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to stop HTTP server", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to stop HTTP server: %w", err))
	}

	if err := s.bridge.Close(ctx); err != nil {
		s.logger.Error("Failed to close shell bridge", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to close shell bridge: %w", err))
	}

	s.tracer.Close()
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
