package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/raveliquar/internal/catalog"
	"github.com/jonathan/raveliquar/internal/observability"
	"github.com/jonathan/raveliquar/internal/quiz"
	"github.com/jonathan/raveliquar/internal/scoring"
)

var (
	scoreBank       string
	scoreAnswers    string
	scoreCatalogDir string
	scoreTopN       int
	scoreTarget     float64
	scoreJSON       bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score an answers file against a mini-test",
	Long:  `Score reads a JSON array of answers, scores it against a mini-test bank and ranks the catalog archetypes.`,
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreBank, "bank", "", "Mini-test (bank) ID")
	scoreCmd.Flags().StringVarP(&scoreAnswers, "answers", "a", "", "Path to a JSON array of answers")
	scoreCmd.Flags().StringVar(&scoreCatalogDir, "catalog-dir", "", "Catalog directory (default embedded catalog)")
	scoreCmd.Flags().IntVar(&scoreTopN, "top", 5, "Number of matches to show")
	scoreCmd.Flags().Float64Var(&scoreTarget, "target", scoring.DefaultTarget, "Normalization target for the strongest dimension")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the evaluation as JSON")

	if err := scoreCmd.MarkFlagRequired("bank"); err != nil {
		panic(fmt.Sprintf("failed to mark bank flag as required: %v", err))
	}
	if err := scoreCmd.MarkFlagRequired("answers"); err != nil {
		panic(fmt.Sprintf("failed to mark answers flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	_, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := loadCatalog(cmd.Context(), scoreCatalogDir, logger)
	if err != nil {
		return err
	}

	bank, ok := store.Bank(scoreBank)
	if !ok {
		return fmt.Errorf("mini-test not found: %s", scoreBank)
	}

	data, err := os.ReadFile(scoreAnswers)
	if err != nil {
		return fmt.Errorf("failed to read answers file: %w", err)
	}
	var answers []quiz.Answer
	if err := json.Unmarshal(data, &answers); err != nil {
		return fmt.Errorf("failed to parse answers file: %w", err)
	}

	ev := scoring.Evaluator{Target: scoreTarget, TopN: scoreTopN}.Evaluate(&bank, answers, store.List(catalog.KindArchetype))

	if scoreJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ev)
	}
	return observability.NewPrinter(cmd.OutOrStdout()).PrintEvaluation(ev)
}
