package main

import (
	"fmt"

	"github.com/DropBy-app/dropby/api/server"
	"github.com/DropBy-app/dropby/config"
	"github.com/DropBy-app/dropby/logger"
	"github.com/DropBy-app/dropby/tasks/board"
	"github.com/DropBy-app/dropby/tasks/compose"
	"github.com/DropBy-app/dropby/tasks/store"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the DropBy HTTP server",
		Long:  "Run the DropBy HTTP server. All settings come from the environment (or a .env file).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return serve(cfg, logger.New(cfg.LogLevel, nil))
		},
	}
}

func serve(cfg *config.Config, lg *logger.Logger) error {
	lg.Info("Starting DropBy", map[string]any{
		"version":       cfg.Version,
		"port":          cfg.ServerPort,
		"log_level":     cfg.LogLevel,
		"store_backend": cfg.StoreBackend,
	})

	taskStore, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := taskStore.Close(); err != nil {
			lg.Error("failed to close task store", map[string]any{"error": err.Error()})
		}
	}()

	b := board.New(taskStore, newComposer(cfg, lg), cfg.StoreTimeout, lg)

	srv := server.New(b, cfg, lg)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// newStore opens the task store selected by cfg.StoreBackend.
func newStore(cfg *config.Config) (store.TaskStore, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		st, err := store.NewRedisTaskStore(cfg.RedisURL, cfg.RedisKeyPrefix)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendMemory:
		st, err := store.NewMemoryTaskStore(cfg.SnapshotPath)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func newComposer(cfg *config.Config, lg *logger.Logger) compose.Composer {
	if !cfg.ComposerEnabled() {
		lg.Warn("COHERE_API_KEY not set, compose is disabled")
		return compose.Disabled{}
	}
	lg.Info("Compose enabled", map[string]any{
		"model":    cfg.CohereModel,
		"base_url": cfg.CohereBaseURL,
	})
	return compose.NewCohereClient(cfg.CohereAPIKey, cfg.CohereModel, cfg.CohereBaseURL, cfg.AITimeout)
}
