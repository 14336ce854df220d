package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pcg/internal/handler"
	"pcg/internal/hub"
	"pcg/internal/metrics"
	"pcg/internal/service"
	"pcg/internal/watcher"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	listenAddr string
	serveWatch bool
)

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve [knowledge.yaml]",
	Short: "Serve a knowledge file over HTTP",
	Long: `Loads the knowledge file and serves the JSON API under /api, runtime
events as server-sent events on /events, and counters on /metrics.

With --watch the knowledge file is reloaded whenever it changes.

Example:
  pcg serve family.yaml --addr :3000 --watch`,
	Args: cobra.ExactArgs(1),
	RunE: serve,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":3000", "HTTP listen address")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the knowledge file when it changes")
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	bus := service.NewEventBus()
	sseHub := hub.New(logger)
	go sseHub.Run(ctx.Done())
	go sseHub.Forward(ctx, bus)

	svc, closeSvc, err := newService(bus, m)
	if err != nil {
		return err
	}
	defer closeSvc()

	if _, err := svc.Load(ctx, args[0]); err != nil {
		return err
	}

	mux := http.NewServeMux()
	handler.NewKnowledgeHandler(svc, logger).Register(mux)
	mux.Handle("GET /events", sseHub)
	mux.Handle("GET /metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr: listenAddr,
		Handler: handler.Chain(mux,
			handler.Recover(logger),
			handler.Logger(logger),
		),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", listenAddr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if serveWatch {
		fw := watcher.New([]string{args[0]}, func(path string) {
			if _, err := svc.Load(gctx, path); err != nil {
				logger.Error("reload failed", zap.String("path", path), zap.Error(err))
			}
		}).WithDebounce(cfg.Watch.Debounce.Duration()).WithLogger(logger)
		g.Go(func() error {
			if err := fw.Watch(gctx); err != nil && gctx.Err() == nil {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
