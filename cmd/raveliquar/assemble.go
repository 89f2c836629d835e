package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/raveliquar/internal/assembler"
	"github.com/jonathan/raveliquar/internal/observability"
)

var (
	assembleUser string
	assembleRun  string
	assembleAt   string
	assembleJSON bool
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble the Raveliquar result for a user and run",
	Long: `Assemble prints the deterministic Raveliquar result for a user, run and
completion time without touching the database. The same inputs always print
the same result.`,
	RunE: runAssemble,
}

func init() {
	assembleCmd.Flags().StringVar(&assembleUser, "user", "", "User (profile) ID")
	assembleCmd.Flags().StringVar(&assembleRun, "run", "", "Run ID")
	assembleCmd.Flags().StringVar(&assembleAt, "at", "", "Completion time, RFC3339 (default now)")
	assembleCmd.Flags().BoolVar(&assembleJSON, "json", false, "Print the result as JSON")

	if err := assembleCmd.MarkFlagRequired("user"); err != nil {
		panic(fmt.Sprintf("failed to mark user flag as required: %v", err))
	}
	if err := assembleCmd.MarkFlagRequired("run"); err != nil {
		panic(fmt.Sprintf("failed to mark run flag as required: %v", err))
	}

	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, _ []string) error {
	var completedAt *time.Time
	if assembleAt != "" {
		at, err := time.Parse(time.RFC3339, assembleAt)
		if err != nil {
			return fmt.Errorf("invalid --at value: %w", err)
		}
		completedAt = &at
	}

	result, err := assembler.Assemble(assembleUser, assembleRun, completedAt)
	if err != nil {
		return fmt.Errorf("failed to assemble result: %w", err)
	}

	if assembleJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return observability.NewPrinter(cmd.OutOrStdout()).PrintResult(result)
}
