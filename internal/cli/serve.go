package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fleetmind/fleetmind/internal/config"
	"github.com/fleetmind/fleetmind/internal/janitor"
	"github.com/fleetmind/fleetmind/internal/logger"
	"github.com/fleetmind/fleetmind/internal/server"
	"github.com/fleetmind/fleetmind/pkg/agent"
	"github.com/fleetmind/fleetmind/pkg/assistant"
	"github.com/fleetmind/fleetmind/pkg/contextstore"
	"github.com/fleetmind/fleetmind/pkg/solver"
	"github.com/fleetmind/fleetmind/pkg/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the FleetMind API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	if err := godotenv.Load(); err != nil {
		// No .env file is fine; rely on the environment.
		log.Debug().Msg("No .env file found")
	}

	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	lg, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		File:   cfg.Logging.File,
		Pretty: cfg.Logging.Pretty,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer lg.Close()

	store := contextstore.New()

	var solverClient *solver.Client
	if cfg.Solver.APIKey != "" {
		solverClient, err = solver.New(solver.Config{
			BaseURL: cfg.Solver.BaseURL,
			APIKey:  cfg.Solver.APIKey,
			Timeout: cfg.Solver.Timeout(),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize solver client: %w", err)
		}
	} else {
		log.Warn().Msg("No solver API key configured, solve endpoints disabled")
	}

	var orchestrator *assistant.Orchestrator
	if cfg.Agent.APIKey != "" {
		provider, err := agent.NewProvider(cfg.Agent.Provider, cfg.Agent.APIKey)
		if err != nil {
			return fmt.Errorf("failed to initialize agent provider: %w", err)
		}
		registry := tools.NewRegistry()
		if err := assistant.RegisterTools(registry); err != nil {
			return fmt.Errorf("failed to register assistant tools: %w", err)
		}
		orchestrator = assistant.New(store, registry, provider, assistant.Config{
			Model:       cfg.Agent.Model,
			Temperature: cfg.Agent.Temperature,
			MaxTokens:   cfg.Agent.MaxTokens,
		})
	} else {
		log.Warn().Msg("No agent API key configured, chat endpoint disabled")
	}

	srv, err := server.New(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		Store:        store,
		Solver:       solverClient,
		Orchestrator: orchestrator,
		Limits:       cfg.Limits,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	watcher, err := config.NewWatcher(loader, srv.SetLimits)
	if err != nil {
		log.Warn().Err(err).Msg("Config watcher unavailable, limits fixed for this run")
	} else {
		defer watcher.Stop()
	}

	jan := janitor.New(store, cfg.Store.EvictSchedule, cfg.Store.MaxAge())
	if err := jan.Start(); err != nil {
		return fmt.Errorf("failed to start janitor: %w", err)
	}
	defer jan.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
