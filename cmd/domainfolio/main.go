// Command domainfolio serves the domain portfolio API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/poyrazK/domainfolio/internal/adapters/api"
	"github.com/poyrazK/domainfolio/internal/adapters/kvstore"
	"github.com/poyrazK/domainfolio/internal/adapters/seed"
	"github.com/poyrazK/domainfolio/internal/config"
	"github.com/poyrazK/domainfolio/internal/core/services"
	"github.com/poyrazK/domainfolio/internal/workers/expiry"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, cfg, logger, nil); err != nil {
		logger.Error("domainfolio stopped", "error", err)
		os.Exit(1)
	}
}

// run wires the service and blocks until ctx is cancelled or a component
// fails. ready, when set, receives the bound API address.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, ready chan<- string) error {
	src, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return err
	}

	be, err := kvstore.Open(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if errClose := be.Close(); errClose != nil {
			logger.Warn("failed to close store", "error", errClose)
		}
	}()

	portfolio, err := services.NewPortfolio(src, be.Store, cfg.CacheMaxCost, logger)
	if err != nil {
		return err
	}
	defer portfolio.Close()
	gateway := services.NewGateway(src, be.Store, portfolio, logger)
	watcher := services.NewWatcher(be.Store, portfolio, cfg.Debounce, logger)
	sweeper := expiry.NewSweeper(portfolio, cfg.Expiry.Schedule, logger)

	searches := services.NewSearchRecorder(gateway, cfg.SearchDebounce, logger)
	defer searches.Stop()

	handler := api.NewAPIHandler(portfolio, gateway, logger).WithSearchRecorder(searches)
	srv := &http.Server{
		Handler: api.NewRouter(handler, api.Options{
			CORSOrigins: cfg.CORSOrigins,
			RateLimit:   cfg.Rate.RequestsPerSecond,
			RateBurst:   cfg.Rate.Burst,
			Logger:      logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
	}
	if ready != nil {
		ready <- ln.Addr().String()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return watcher.Run(gctx) })
	g.Go(func() error { return sweeper.Run(gctx) })
	if be.Poll != nil {
		g.Go(func() error { return be.Poll(gctx) })
	}
	g.Go(func() error {
		logger.Info("API listening", "addr", ln.Addr().String(), "backend", cfg.Store.Backend)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve API: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
