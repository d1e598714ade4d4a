package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/tapestry"
	"github.com/aretw0/tapestry/internal/config"
	"github.com/aretw0/tapestry/internal/presentation/tui"
	httpAdapter "github.com/aretw0/tapestry/pkg/adapters/http"
	"github.com/aretw0/tapestry/pkg/adapters/memory"
	"github.com/aretw0/tapestry/pkg/adapters/redis"
	"github.com/aretw0/tapestry/pkg/observability"
	"github.com/aretw0/tapestry/pkg/persistence/middleware"
	"github.com/aretw0/tapestry/pkg/ports"
	"github.com/aretw0/tapestry/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP editing server",
	Long: `Hosts editor sessions over a JSON API. With redis.addr configured the shared
clipboard and the per-session locks are backed by Redis, so several replicas can serve
the same sessions.`,
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("addr") {
		cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
	}

	srv, cleanup, err := buildServer(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Warn("cleanup failed", "err", err)
		}
	}()

	if f, ok := cmd.ErrOrStderr().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		tui.PrintBanner(f, tapestry.Version)
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting Tapestry Server", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt or terminate signals.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("Start shutdown", "signal", sig.String())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("Tapestry Server stopped gracefully")
		return nil
	}
}

func init() {
	// RunE is attached here rather than in the literal to avoid an
	// initialization cycle through clipboardKey.
	serveCmd.RunE = runServe
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", config.DefaultHTTPAddr, "Listen address (overrides http.addr)")
	serveCmd.Flags().String("clipboard-key", "default", "Shared clipboard slot used by every session")
}

// buildServer wires sessions, metrics, streams and the optional Redis backend
// into an http.Server. cleanup releases the Redis connection.
func buildServer(c config.Config) (*http.Server, func() error, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)
	streams := httpAdapter.NewStreamManager(logger)

	var (
		clip     ports.ClipboardStore = memory.NewStore()
		mgrOpts  []session.Option
		cleanup  = func() error { return nil }
		clipSlot = clipboardKey()
	)

	if c.Redis.Addr != "" {
		ttl, err := c.Redis.Expiration()
		if err != nil {
			return nil, nil, err
		}
		store := redis.New(c.Redis.Addr, c.Redis.Password, c.Redis.DB,
			redis.WithPrefix(c.Redis.Prefix),
			redis.WithTTL(ttl),
		)
		clip = store
		cleanup = store.Close
		mgrOpts = append(mgrOpts, session.WithLocker(redis.NewLocker(store.Client(), c.Redis.Prefix)))
		logger.Info("redis enabled", "addr", c.Redis.Addr, "prefix", c.Redis.Prefix)
	}

	mws, err := c.Clipboard.Middlewares()
	if err != nil {
		return nil, nil, err
	}
	clip = middleware.Chain(clip, mws...)

	mgrOpts = append(mgrOpts,
		session.WithLogger(logger),
		session.WithFactory(func(id string) *tapestry.Editor {
			return tapestry.New(
				tapestry.WithConfig(c),
				tapestry.WithLogger(logger.With("session_id", id)),
				tapestry.WithLifecycleHooks(observability.Chain(metrics.Hooks(), streams.Hooks(id))),
				tapestry.WithClipboardStore(clip, clipSlot),
			)
		}),
	)

	handler := httpAdapter.NewHandler(session.NewManager(mgrOpts...),
		httpAdapter.WithStreams(streams),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		httpAdapter.WithLogger(logger),
	)

	return &http.Server{
		Addr:              c.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}, cleanup, nil
}

func clipboardKey() string {
	key, err := serveCmd.Flags().GetString("clipboard-key")
	if err != nil || key == "" {
		return tapestry.DefaultClipboardKey
	}
	return key
}
