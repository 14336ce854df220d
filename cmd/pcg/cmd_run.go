package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sort"
	"syscall"

	"pcg/internal/metrics"
	"pcg/internal/service"
	"pcg/internal/watcher"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runCmd runs one process of a knowledge file
var runCmd = &cobra.Command{
	Use:   "run [knowledge.yaml] [process] [args...]",
	Short: "Run a process to quiescence",
	Long: `Loads the knowledge file, binds args to the process's in parameters
and fires its rules until a pass changes nothing. Exported graphs are
applied to the knowledge base and printed, followed by the out parameters.

Numbers and true/false are passed as such; other args are strings.

Example:
  pcg run family.yaml ancestry
  pcg run family.yaml greet 'Ann' --db canon.db`,
	Args: cobra.MinimumNArgs(2),
	RunE: runProcess,
}

// watchCmd reruns a process whenever its knowledge file changes
var watchCmd = &cobra.Command{
	Use:   "watch [knowledge.yaml] [process] [args...]",
	Short: "Rerun a process each time the knowledge file changes",
	Args:  cobra.MinimumNArgs(2),
	RunE:  watchProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	var m *metrics.Metrics
	if showMetrics {
		m = metrics.New()
	}
	svc, closeSvc, err := newService(nil, m)
	if err != nil {
		return err
	}
	defer closeSvc()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := loadAndRun(ctx, svc, args, cmd.OutOrStdout()); err != nil {
		return err
	}

	if m != nil {
		samples, err := m.Snapshot()
		if err != nil {
			return fmt.Errorf("failed to gather metrics: %w", err)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "metrics:")
		for _, s := range samples {
			fmt.Fprintf(w, "  %s %g\n", s.Name, s.Value)
		}
	}
	return nil
}

func watchProcess(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := service.NewEventBus()
	events := make(chan service.Event, 100)
	bus.Subscribe(events)
	defer bus.Unsubscribe(events)
	go func() {
		for {
			select {
			case ev := <-events:
				logger.Debug("event", zap.String("type", string(ev.Type)), zap.Any("payload", ev.Payload))
			case <-ctx.Done():
				return
			}
		}
	}()

	svc, closeSvc, err := newService(bus, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	w := cmd.OutOrStdout()
	if err := loadAndRun(ctx, svc, args, w); err != nil {
		logger.Error("run failed", zap.Error(err))
	}

	fw := watcher.New([]string{args[0]}, func(path string) {
		if err := loadAndRun(ctx, svc, args, w); err != nil {
			logger.Error("run failed", zap.String("path", path), zap.Error(err))
		}
	}).WithDebounce(cfg.Watch.Debounce.Duration()).WithLogger(logger)

	if err := fw.Watch(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func loadAndRun(ctx context.Context, svc *service.KnowledgeService, args []string, w io.Writer) error {
	if _, err := svc.Load(ctx, args[0]); err != nil {
		return err
	}
	report, err := svc.Run(ctx, args[1], args[2:])
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: %d cycles, %d firings, %d exports\n",
		report.Process, report.Cycles, report.Firings, len(report.Exports))
	for _, ex := range report.Exports {
		op := "+"
		if ex.Retract {
			op = "-"
		}
		fmt.Fprintf(w, "%s ", op)
		if err := svc.Render(ex.Graph, w); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(report.Outputs))
	for name := range report.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s = %s\n", name, report.Outputs[name])
	}
	return nil
}
