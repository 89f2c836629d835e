package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/raveliquar/internal/db"
)

var (
	migrateDown    bool
	migrateVersion int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
	Long: `Apply the embedded schema migrations to DATABASE_URL.

By default migrates to the latest version. --version N moves to version N,
--down rolls every migration back.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back every migration")
	migrateCmd.Flags().IntVar(&migrateVersion, "version", -1, "Target schema version (default latest)")
	migrateCmd.MarkFlagsMutuallyExclusive("down", "version")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	target, err := migrateTarget(migrateDown, migrateVersion)
	if err != nil {
		return err
	}

	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	if err := db.Migrate(cfg.DatabaseURL, target, logger); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

// migrateTarget maps the flags onto db.Migrate's version argument.
func migrateTarget(down bool, version int) (int, error) {
	switch {
	case down:
		return 0, nil
	case version == 0:
		return 0, fmt.Errorf("--version must be positive; use --down to roll back everything")
	case version < -1:
		return 0, fmt.Errorf("--version must be positive, got %d", version)
	default:
		return version, nil
	}
}
