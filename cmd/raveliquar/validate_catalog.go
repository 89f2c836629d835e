package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/raveliquar/internal/catalog"
	"github.com/jonathan/raveliquar/internal/schemas"
)

var validateCatalogDir string

var validateCatalogCmd = &cobra.Command{
	Use:   "validate-catalog",
	Short: "Validate a catalog directory",
	Long: `Validate checks archetypes.json, luminaries.json, shadows.json and every
banks/*.json file against the embedded JSON schemas, then loads the catalog to
catch duplicate ids and unknown question types.`,
	RunE: runValidateCatalog,
}

func init() {
	validateCatalogCmd.Flags().StringVarP(&validateCatalogDir, "dir", "d", "", "Catalog directory (required)")

	if err := validateCatalogCmd.MarkFlagRequired("dir"); err != nil {
		panic(fmt.Sprintf("failed to mark dir flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCatalogCmd)
}

//nolint:errcheck // writing to the command output
func runValidateCatalog(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()

	if err := statDir(validateCatalogDir); err != nil {
		return fmt.Errorf("failed to open catalog directory: %w", err)
	}

	type check struct {
		path   string
		schema schemas.Name
	}
	var checks []check
	for _, kind := range catalog.Kinds() {
		checks = append(checks, check{filepath.Join(validateCatalogDir, catalog.EntryFile(kind)), schemas.CatalogEntries})
	}
	banks, err := filepath.Glob(filepath.Join(validateCatalogDir, "banks", "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list banks: %w", err)
	}
	sort.Strings(banks)
	for _, b := range banks {
		checks = append(checks, check{b, schemas.QuestionBank})
	}

	failed := 0
	for _, c := range checks {
		if err := schemas.ValidateFile(c.schema, c.path); err != nil {
			failed++
			fmt.Fprintf(out, "%s %s\n%v\n", fail("FAIL"), c.path, err)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", pass("ok  "), c.path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d catalog files failed validation", failed, len(checks))
	}

	store, err := loadCatalog(cmd.Context(), validateCatalogDir, zap.NewNop())
	if err != nil {
		fmt.Fprintf(out, "%s %v\n", fail("FAIL"), err)
		return err
	}

	fmt.Fprintf(out, "%s %d entries, %d mini-tests\n", pass("catalog valid:"), len(store.All()), len(store.Banks()))
	return nil
}

