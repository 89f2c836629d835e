// Package main provides the raveliquar command: the quiz API server and its
// operator tools.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/raveliquar/internal/catalog"
	"github.com/jonathan/raveliquar/internal/config"
	"github.com/jonathan/raveliquar/internal/observability"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "raveliquar",
	Short: "Raveliquar archetype quiz service",
	Long:  "Raveliquar serves the archetype quiz API: access codes, mini-tests, scoring, and the seeded Raveliquar result for each completed run.",

	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional YAML or JSON config file; environment variables override it")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadRuntime reads configuration and builds the logger every command shares.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// loadCatalog opens dir as the catalog, or the embedded catalog when dir is
// empty, and loads it.
func loadCatalog(ctx context.Context, dir string, logger *zap.Logger) (*catalog.Store, error) {
	var store *catalog.Store
	if dir == "" {
		store = catalog.Embedded(catalog.WithLogger(logger))
	} else {
		if err := statDir(dir); err != nil {
			return nil, fmt.Errorf("failed to open catalog directory: %w", err)
		}
		store = catalog.NewStore(os.DirFS(dir), catalog.WithLogger(logger))
	}

	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return store, nil
}

// statDir reports an error unless dir exists and is a directory.
func statDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
