package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/timecalc"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TSH_BACKEND", "TSH_STORAGE_PATH", "TSH_CONVENTION", "TSH_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadWritesTemplateOnFirstRun(t *testing.T) {
	clearEnv(t)
	base := t.TempDir()

	cfg, created, err := Load(base)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "xlsx", cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(base, "timesheet.xlsx"), cfg.Storage.Path)
	assert.Equal(t, "Sheet1", cfg.Storage.JobsSheet)
	assert.Equal(t, "semanas", cfg.Storage.WeeksSheet)
	assert.Equal(t, model.MondayStart, cfg.Convention())
	assert.Equal(t, timecalc.PolicyZero, cfg.Policy())

	data, err := os.ReadFile(FilePath(base))
	require.NoError(t, err)
	assert.Contains(t, string(data), "reset_on_schema_mismatch = false")

	// The template itself must decode cleanly on the next run.
	again, created, err := Load(base)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, again.Undecoded)
	assert.Equal(t, cfg.Storage, again.Storage)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	clearEnv(t)
	base := t.TempDir()
	content := "[storage]\nbackend = \"SQLite\"\n\n[hours]\ninvalid_entry = \"flag\"\n\n[extra]\nfoo = 1\n"
	require.NoError(t, os.WriteFile(FilePath(base), []byte(content), 0o600))

	cfg, created, err := Load(base)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(base, "timesheet.db"), cfg.Storage.Path)
	assert.Equal(t, "semanas", cfg.Storage.WeeksSheet)
	assert.Equal(t, timecalc.PolicyFlag, cfg.Policy())
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Contains(t, cfg.Undecoded, "extra.foo")
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	base := t.TempDir()
	t.Setenv("TSH_BACKEND", "sqlite")
	t.Setenv("TSH_STORAGE_PATH", "/tmp/custom.db")
	t.Setenv("TSH_CONVENTION", "saturday")
	t.Setenv("TSH_LOG_LEVEL", "debug")

	cfg, _, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/custom.db", cfg.Storage.Path)
	assert.Equal(t, model.SaturdayStart, cfg.Convention())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"backend", "[storage]\nbackend = \"sheets\"\n", "storage.backend"},
		{"same sheets", "[storage]\njobs_sheet = \"x\"\nweeks_sheet = \"x\"\n", "must differ"},
		{"convention", "[week]\nconvention = \"sunday\"\n", "week.convention"},
		{"policy", "[hours]\ninvalid_entry = \"panic\"\n", "hours.invalid_entry"},
		{"level", "[log]\nlevel = \"loud\"\n", "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			base := t.TempDir()
			require.NoError(t, os.WriteFile(FilePath(base), []byte(tt.content), 0o600))
			_, _, err := Load(base)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	base := t.TempDir()
	require.NoError(t, os.WriteFile(FilePath(base), []byte("[storage\nbackend ="), 0o600))

	cfg, _, err := Load(base)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), FilePath(base)))
	assert.Equal(t, DefaultBackend, cfg.Storage.Backend)
}
