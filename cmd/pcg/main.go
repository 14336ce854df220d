package main

import (
	"fmt"
	"os"

	"pcg/internal/config"
	"pcg/internal/logging"
	"pcg/internal/metrics"
	"pcg/internal/repository/sqlite"
	"pcg/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	format      string
	dbPath      string
	showMetrics bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pcg",
	Short: "pcg - process conceptual graph runtime",
	Long: `pcg parses, projects and rewrites conceptual graphs.

Knowledge files declare concept and relation types, seed graphs and
processes. Running a process fires its rules against a private copy of the
knowledge base until nothing changes, then applies the exported graphs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var (
			path string
			err  error
		)
		if configPath != "" {
			cfg, path, err = config.LoadFromPath(configPath)
		} else {
			cfg, path, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if format != "" {
			cfg.Codec.Format = format
		}
		if dbPath != "" {
			cfg.Canon.Path = dbPath
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Logging, verbose || cfg.Trace)
		if err != nil {
			return err
		}
		logger.Debug("config loaded", zap.String("path", path), zap.String("summary", cfg.Summary()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: search $PCG_CONFIG, ./pcg.yaml, ...)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "Output format: cgif, yaml, json")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Canon database path (overrides canon.path)")

	runCmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print runtime counters after the run")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(canonCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newService builds a knowledge service from the loaded config. The returned
// close function releases the canon database, if one is open.
func newService(bus *service.EventBus, m *metrics.Metrics) (*service.KnowledgeService, func(), error) {
	opts := service.OptionsFromConfig(cfg)
	if cfg.Canon.Path == "" {
		return service.NewKnowledgeService(opts, nil, bus, logger, m), func() {}, nil
	}

	repo, err := sqlite.New(cfg.Canon.Path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("canon database opened", zap.String("path", cfg.Canon.Path))
	closeRepo := func() {
		if err := repo.Close(); err != nil {
			logger.Warn("failed to close canon database", zap.Error(err))
		}
	}
	return service.NewKnowledgeService(opts, repo, bus, logger, m), closeRepo, nil
}
