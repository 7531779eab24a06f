package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/datasage-ai/datasage/internal/config"
	"github.com/datasage-ai/datasage/internal/llm"
	"github.com/datasage-ai/datasage/internal/llm/providers"
	"github.com/datasage-ai/datasage/internal/pipeline"
	"github.com/datasage-ai/datasage/internal/render"
	"github.com/datasage-ai/datasage/internal/report"
	"github.com/datasage-ai/datasage/internal/store"
)

var (
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "datasage",
	Short: "DataSage - natural language analytics reports",
	Long: `DataSage turns a natural-language question about a relational
database into a PDF report: it discovers the schema, generates and
validates a SQL query, executes it, analyzes the results and renders
charts into the final document.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig runs before every command: it loads the configuration and sets
// up structured logging from it. The init command skips loading since its job
// is to create the file.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "init" || cmd.Name() == "help" || cmd.Name() == "version" {
		logger = slog.Default()
		return nil
	}

	loaded, err := config.NewLoader(config.NewValidator()).LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger = slog.New(handler)
	slog.SetDefault(logger)

	return nil
}

// runtime carries the collaborators shared by every workflow instance: one
// provider, renderer and composer serve any number of stores.
type runtime struct {
	provider llm.Provider
	renderer pipeline.Renderer
	composer pipeline.Composer
}

func newRuntime() (*runtime, error) {
	provider, err := providers.NewProvider(llm.ProviderConfig{
		Type:         cfg.LLM.Provider,
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		DefaultModel: cfg.LLM.Model,
	})
	if err != nil {
		return nil, err
	}
	return &runtime{
		provider: provider,
		renderer: render.NewChartRenderer(render.Config{OutputDir: cfg.Output.ChartsDir}, logger),
		composer: report.NewPDFComposer(report.Config{OutputDir: cfg.Output.ReportsDir}, logger),
	}, nil
}

// workflowFor assembles the pipeline against the given store descriptor.
// The returned close function releases the store connection.
func (rt *runtime) workflowFor(dsn string) (*pipeline.Workflow, func() error, error) {
	storeCfg := store.DefaultConfig(dsn)
	if cfg.Database.BusyTimeoutMS > 0 {
		storeCfg.BusyTimeout = time.Duration(cfg.Database.BusyTimeoutMS) * time.Millisecond
	}
	db, err := store.OpenWithConfig(storeCfg)
	if err != nil {
		return nil, nil, err
	}

	wf, err := pipeline.New(pipeline.Deps{
		LLM:      rt.provider,
		Store:    db,
		Renderer: rt.renderer,
		Composer: rt.composer,
		Logger:   logger,
		Model:    cfg.LLM.Model,
		MaxSteps: cfg.Workflow.MaxSteps,
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return wf, db.Close, nil
}

// buildWorkflow assembles the pipeline against the configured store.
func buildWorkflow() (*pipeline.Workflow, func() error, error) {
	rt, err := newRuntime()
	if err != nil {
		return nil, nil, err
	}
	return rt.workflowFor(cfg.Database.DSN)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("datasage dev")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "datasage.yaml", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
