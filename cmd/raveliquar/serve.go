package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/raveliquar/internal/assembler"
	"github.com/jonathan/raveliquar/internal/catalog"
	"github.com/jonathan/raveliquar/internal/config"
	"github.com/jonathan/raveliquar/internal/db"
	"github.com/jonathan/raveliquar/internal/server"
	"github.com/jonathan/raveliquar/internal/server/ratelimit"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the quiz REST endpoints. Requires DATABASE_URL and JWT_SECRET.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply database migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if servePort != 0 {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	adminKeys, err := config.NewAdminKeyConfig()
	if err != nil {
		return fmt.Errorf("failed to create admin key config: %w", err)
	}
	if !adminKeys.Enabled() {
		logger.Warn("ADMIN_KEY_HASH is not set; admin endpoints will refuse every request")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(ctx, cfg.CatalogDir, logger)
	if err != nil {
		return err
	}

	if serveMigrate {
		if err := db.Migrate(cfg.DatabaseURL, -1, logger); err != nil {
			return err
		}
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var rl *ratelimit.Config
	if cfg.RateLimitEnabled {
		rl = ratelimit.NewConfig(true, cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	srv, err := server.New(server.Config{
		Addr:            cfg.Addr(),
		CORSOrigin:      cfg.CORSOrigin,
		RankTopN:        cfg.RankTopN,
		NormalizeTarget: cfg.NormalizeTarget,
		RateLimit:       rl,
	}, server.Deps{
		Store:     database,
		Catalog:   cat,
		Assembler: assembler.New(assembler.CatalogLibrary(cat.List(catalog.KindArchetype)), assembler.WithLogger(logger)),
		JWT:       server.NewJWTService(jwtConfig),
		AdminKeys: adminKeys,
		Logger:    logger,
		Registry:  registry,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("catalog ready",
		zap.Int("entries", len(cat.All())),
		zap.Int("mini_tests", len(cat.Banks())),
	)
	return srv.Start(ctx)
}
