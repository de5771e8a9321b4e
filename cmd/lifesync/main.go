package main

import (
	"fmt"
	"os"

	"github.com/arnold/lifesync-api/internal/config"
	"github.com/arnold/lifesync-api/internal/database"
	"github.com/arnold/lifesync-api/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "lifesync",
		Short:         "LifeSync - goals, journal and wellbeing tracker",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads and validates config, then opens the logger and the
// key-value store. adjust, when set, applies flag overrides before
// validation.
func bootstrap(adjust func(*config.Config)) (*config.Config, *zap.SugaredLogger, *database.Store, error) {
	cfg := config.Load()
	if adjust != nil {
		adjust(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if err := database.Connect(cfg); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return cfg, log, database.NewStore(database.DB), nil
}
