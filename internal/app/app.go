package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/evymii/ard-arena/internal/config"
	servernet "github.com/evymii/ard-arena/internal/net"
	"github.com/evymii/ard-arena/internal/net/ws"
	"github.com/evymii/ard-arena/internal/results"
	"github.com/evymii/ard-arena/internal/session"
	"github.com/evymii/ard-arena/internal/telemetry"
	"github.com/evymii/ard-arena/logging"
	loggingSinks "github.com/evymii/ard-arena/logging/sinks"
)

// NewLogger builds the process logger. Debug builds a development logger.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Run starts the relay server on cfg's address and serves until ctx ends.
func Run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr(), err)
	}
	return Serve(ctx, ln, cfg, logger)
}

// Serve runs the relay server on ln. It shuts the server down gracefully
// when ctx ends and returns nil in that case.
func Serve(ctx context.Context, ln net.Listener, cfg config.Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	telemetryLogger := telemetry.WrapZap(logger)
	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	sinks, err := loggingSinks.Build(cfg.Logging(), os.Stdout, logger)
	if err != nil {
		ln.Close()
		return fmt.Errorf("failed to construct logging sinks: %w", err)
	}
	router := logging.NewRouter(nil, cfg.Logging(), sinks, logger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	var history results.Repository
	var recorder session.Recorder
	if cfg.Server.DBPath != "" {
		store, err := results.Open(cfg.Server.DBPath)
		if err != nil {
			ln.Close()
			return err
		}
		defer store.Close()
		history, recorder = store, store
	}

	counters := &telemetry.Counters{}
	registry := session.NewRegistry(session.Options{
		Publisher: router,
		Metrics:   counters,
		Logger:    telemetryLogger,
		Recorder:  recorder,
	})
	wsHandler := ws.NewHandler(registry, ws.HandlerConfig{Logger: telemetryLogger})
	handler := servernet.NewHTTPHandler(servernet.HTTPHandlerConfig{
		Registry: registry,
		History:  history,
		Counters: counters,
		Events:   router,
		WS:       wsHandler.Handle,
		Logger:   telemetryLogger,
		Debug:    cfg.Debug,
	})

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	telemetryLogger.Printf("server listening on %s", ln.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
