// Tokenpressd is the tokenpress compression daemon.
//
// It loads the encoder model once at startup, then serves compression
// requests over HTTP. Configuration comes from a YAML file and
// TOKENPRESS_-prefixed environment variables; see internal/config.
//
// Usage:
//
//	# Start with defaults
//	tokenpressd
//
//	# Explicit config file
//	tokenpressd -config ./tokenpress.yaml
//
//	# Configure via environment
//	TOKENPRESS_SERVER__PORT=8080 tokenpressd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tokenpress/internal/compressor"
	"github.com/fyrsmithlabs/tokenpress/internal/config"
	"github.com/fyrsmithlabs/tokenpress/internal/encoder"
	httpapi "github.com/fyrsmithlabs/tokenpress/internal/http"
	"github.com/fyrsmithlabs/tokenpress/internal/logging"
	"github.com/fyrsmithlabs/tokenpress/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/tokenpress/config.yaml)")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  tokenpressd            Start the compression daemon\n")
			fmt.Fprintf(os.Stderr, "  tokenpressd version    Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("tokenpressd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run initializes telemetry, logging, the compression models, and the HTTP
// server, then blocks until ctx is cancelled and shuts everything down in
// reverse order.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if _, err := config.EnsureConfigDir(); err != nil {
		return err
	}

	tel, err := telemetry.New(ctx, &cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		_ = tel.Shutdown(context.Background())
	}()

	logger, err := logging.New(&cfg.Logging, tel.LoggerProvider())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info(ctx, "starting tokenpressd",
		zap.String("version", version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("query_aware", cfg.Compressor.QueryAware),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout))

	libPath, err := encoder.EnsureRuntime(ctx)
	if err != nil {
		return fmt.Errorf("failed to prepare onnx runtime: %w", err)
	}
	defer func() {
		_ = encoder.ShutdownRuntime()
	}()

	logger.Info(ctx, "onnx runtime ready", zap.String("library", libPath))

	comp, err := compressor.NewFromConfig(ctx, cfg.Compressor, cfg.Encoder, cfg.Embeddings, logger, tel)
	if err != nil {
		return fmt.Errorf("failed to initialize compressor: %w", err)
	}
	defer func() {
		_ = comp.Close()
	}()

	srv, err := httpapi.NewServer(comp, logger, &cfg.Server, version)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	logger.Info(ctx, "server configured",
		zap.String("health_endpoint", fmt.Sprintf("http://%s:%d/health", cfg.Server.Host, cfg.Server.Port)),
		zap.String("compress_endpoint", "/api/v1/compress"),
		zap.String("metrics_endpoint", "/metrics"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
