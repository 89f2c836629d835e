package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const embeddedCatalogDir = "../../internal/catalog/data"

// execute runs rootCmd in-process with args and returns its output. Flag
// values are package globals, so every command's flags are reset first.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestAssembleCommand_Deterministic(t *testing.T) {
	args := []string{"assemble", "--user", "user-1", "--run", "run-1", "--at", "2024-03-01T10:00:00Z", "--json"}

	first, err := execute(t, "", args...)
	require.NoError(t, err)
	second, err := execute(t, "", args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(first), &result))
	assert.Equal(t, "user-1", result["userId"])
	assert.Equal(t, "run-1", result["runId"])
	assert.NotEmpty(t, result["legendaryRaveliquarName"])
}

func TestAssembleCommand_DifferentRunsDiffer(t *testing.T) {
	a, err := execute(t, "", "assemble", "--user", "u", "--run", "r1", "--at", "2024-03-01T10:00:00Z", "--json")
	require.NoError(t, err)
	b, err := execute(t, "", "assemble", "--user", "u", "--run", "r2", "--at", "2024-03-01T10:00:00Z", "--json")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestAssembleCommand_Printed(t *testing.T) {
	out, err := execute(t, "", "assemble", "--user", "u", "--run", "r", "--at", "2024-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "┌")
}

func TestAssembleCommand_Errors(t *testing.T) {
	_, err := execute(t, "", "assemble", "--run", "r")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user")

	_, err = execute(t, "", "assemble", "--user", "u", "--run", "r", "--at", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --at")
}

func writeAnswers(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answers.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestScoreCommand_JSON(t *testing.T) {
	answers := writeAnswers(t, `[{"questionId":"mc-q1","choiceKey":"a"},{"questionId":"nope","choiceKey":"a"}]`)

	out, err := execute(t, "", "score", "--bank", "mini-clarity", "--answers", answers, "--json")
	require.NoError(t, err)

	var ev struct {
		Raw     map[string]float64 `json:"raw"`
		Ranked  []json.RawMessage  `json:"ranked"`
		Skipped int                `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &ev))
	assert.Equal(t, 2.0, ev.Raw["clarity"])
	assert.Equal(t, 1, ev.Skipped)
	assert.NotEmpty(t, ev.Ranked)
}

func TestScoreCommand_CatalogDir(t *testing.T) {
	answers := writeAnswers(t, `[{"questionId":"mc-q1","choiceKey":"a"}]`)
	_, err := execute(t, "", "score", "--bank", "mini-clarity", "--answers", answers, "--catalog-dir", embeddedCatalogDir, "--json")
	assert.NoError(t, err)
}

func TestScoreCommand_Errors(t *testing.T) {
	answers := writeAnswers(t, `[]`)

	_, err := execute(t, "", "score", "--bank", "missing", "--answers", answers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mini-test not found")

	_, err = execute(t, "", "score", "--bank", "mini-clarity", "--answers", filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read answers file")

	bad := writeAnswers(t, `{not json`)
	_, err = execute(t, "", "score", "--bank", "mini-clarity", "--answers", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse answers file")

	_, err = execute(t, "", "score", "--bank", "mini-clarity", "--answers", answers, "--catalog-dir", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open catalog directory")
}

func TestValidateCatalogCommand_Valid(t *testing.T) {
	out, err := execute(t, "", "validate-catalog", "--dir", embeddedCatalogDir)
	require.NoError(t, err)
	assert.Contains(t, out, "archetypes.json")
	assert.Contains(t, out, "mini-clarity.json")
	assert.Contains(t, out, "catalog valid")
}

func TestValidateCatalogCommand_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archetypes.json"), []byte(`[{"id":"a"}]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "luminaries.json"), []byte(`[]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shadows.json"), []byte(`[]`), 0644))

	out, err := execute(t, "", "validate-catalog", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 catalog files failed validation")
	assert.Contains(t, out, "FAIL")
}

func TestValidateCatalogCommand_DuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	entry := `[{"id":"dup","name":"Dup"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archetypes.json"), []byte(entry), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "luminaries.json"), []byte(entry), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shadows.json"), []byte(`[]`), 0644))

	_, err := execute(t, "", "validate-catalog", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestValidateCatalogCommand_MissingDir(t *testing.T) {
	_, err := execute(t, "", "validate-catalog", "--dir", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open catalog directory")
}

func TestHashAdminKeyCommand(t *testing.T) {
	t.Setenv("BCRYPT_COST", "10")

	out, err := execute(t, "", "hash-admin-key", "open-sesame")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("open-sesame")))

	out, err = execute(t, "from-stdin\n", "hash-admin-key")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("from-stdin")))
}

func TestHashAdminKeyCommand_Errors(t *testing.T) {
	t.Setenv("BCRYPT_COST", "10")

	_, err := execute(t, "   \n", "hash-admin-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")

	t.Setenv("BCRYPT_COST", "3")
	_, err = execute(t, "", "hash-admin-key", "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bcrypt cost out of range")
}

func TestServeCommand_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, "", "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestMigrateCommand_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, "", "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestMigrateTarget(t *testing.T) {
	tests := []struct {
		name    string
		down    bool
		version int
		want    int
		wantErr bool
	}{
		{name: "latest", version: -1, want: -1},
		{name: "specific", version: 2, want: 2},
		{name: "down", down: true, version: -1, want: 0},
		{name: "zero", version: 0, wantErr: true},
		{name: "negative", version: -4, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := migrateTarget(tt.down, tt.version)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFlag_BadFile(t *testing.T) {
	_, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "nope.yaml"), "score", "--bank", "b", "--answers", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
