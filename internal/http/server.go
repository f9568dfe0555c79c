// Package http provides the HTTP API for tokenpress.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tokenpress/internal/compressor"
	"github.com/fyrsmithlabs/tokenpress/internal/logging"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	ReadTimeout time.Duration `koanf:"read_timeout"`
	// WriteTimeout bounds the whole response, compression included, so it
	// runs much longer than the read side.
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// NewDefaultConfig returns the local-development defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            9090,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    2 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in [0, 65535], got %d", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts must be non-negative")
	}
	return nil
}

// Service is the compression capability the server exposes.
// *compressor.Compressor satisfies it.
type Service interface {
	Compress(ctx context.Context, text, query string, opts ...compressor.Option) (*compressor.Result, error)
	CompressChunked(ctx context.Context, text, query string, opts ...compressor.Option) (*compressor.Result, error)
}

// Server exposes compression over HTTP.
type Server struct {
	echo    *echo.Echo
	service Service
	logger  *logging.Logger
	metrics *HTTPMetrics
	config  *Config
	version string
}

// NewServer creates a new HTTP server around the compression service.
func NewServer(service Service, logger *logging.Logger, cfg *Config, version string) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("compression service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if cfg.ReadTimeout > 0 {
		e.Server.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		e.Server.WriteTimeout = cfg.WriteTimeout
	}

	metrics := NewHTTPMetrics(logger)

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(metrics.MetricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:    e,
		service: service,
		logger:  logger,
		metrics: metrics,
		config:  cfg,
		version: version,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check and Prometheus exposition. /metrics serves the default
	// prometheus registry (Go runtime and process collectors); compression
	// and HTTP instruments go through the OTel meter provider and reach a
	// metrics backend via the OTLP exporters configured in
	// internal/telemetry, not this endpoint.
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.POST("/compress", s.handleCompress)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: s.version})
}

// handleCompress compresses the provided text.
func (s *Server) handleCompress(c echo.Context) error {
	ctx := c.Request().Context()

	var req CompressRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(ctx, "invalid compress request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text field is required")
	}
	if req.TargetRatio != 0 && (req.TargetRatio <= 0 || req.TargetRatio > 1) {
		return echo.NewHTTPError(http.StatusBadRequest, "target_ratio must be in (0, 1]")
	}

	var opts []compressor.Option
	if req.TargetRatio != 0 {
		opts = append(opts, compressor.WithTargetRatio(req.TargetRatio))
	}

	var result *compressor.Result
	var err error
	if req.Chunked {
		result, err = s.service.CompressChunked(ctx, req.Text, req.Query, opts...)
	} else {
		result, err = s.service.Compress(ctx, req.Text, req.Query, opts...)
	}
	if err != nil {
		if errors.Is(err, compressor.ErrInvalidRatio) || errors.Is(err, compressor.ErrInvalidConfig) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		s.logger.Error(ctx, "compression failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "compression failed")
	}

	s.logger.Debug(ctx, "compressed text",
		zap.Int("original_tokens", result.OriginalTokens),
		zap.Int("compressed_tokens", result.CompressedTokens),
		zap.Float64("ratio", result.Ratio),
	)

	return c.JSON(http.StatusOK, CompressResponse{
		CompressedText:   result.CompressedText,
		OriginalTokens:   result.OriginalTokens,
		CompressedTokens: result.CompressedTokens,
		Ratio:            result.Ratio,
		ReductionPct:     result.ReductionPct(),
		KeptIndices:      result.KeptIndices,
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
