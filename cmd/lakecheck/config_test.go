package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	v, err := loadConfig("")
	require.NoError(t, err)

	cfg := harnessConfig(v)
	assert.Equal(t, defaultBucket, cfg.Bucket)
	assert.Equal(t, types.DefaultScenarioTimeout, cfg.ScenarioTimeout)
	assert.Equal(t, types.DefaultParallelism, cfg.Parallelism)
	assert.Empty(t, cfg.SchemaName)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lakecheck.yaml")
	content := "bucket: custom-bucket\nschema_name: custom_schema\nscenario_timeout: 30s\nparallelism: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v, err := loadConfig(path)
	require.NoError(t, err)

	cfg := harnessConfig(v)
	assert.Equal(t, "custom-bucket", cfg.Bucket)
	assert.Equal(t, "custom_schema", cfg.SchemaName)
	assert.Equal(t, 30*time.Second, cfg.ScenarioTimeout)
	assert.Equal(t, 2, cfg.Parallelism)
}

func TestLoadConfigExplicitPathMustExist(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFlagsOverrideConfig(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	flagBucket = "flag-bucket"
	flagTimeout = 5 * time.Second
	flagParallel = 9
	t.Cleanup(func() {
		flagBucket = ""
		flagTimeout = 0
		flagParallel = 0
	})

	v, err := loadConfig("")
	require.NoError(t, err)

	cfg := harnessConfig(v)
	assert.Equal(t, "flag-bucket", cfg.Bucket)
	assert.Equal(t, 5*time.Second, cfg.ScenarioTimeout)
	assert.Equal(t, 9, cfg.Parallelism)
}

func TestSelectScenarios(t *testing.T) {
	tests := []struct {
		lifecycle string
		wantLen   int
		wantErr   bool
	}{
		{"all", 36, false},
		{"", 36, false},
		{"table", 12, false},
		{"schema", 12, false},
		{"compaction", 12, false},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.lifecycle, func(t *testing.T) {
			scenarios, err := selectScenarios(tt.lifecycle)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, scenarios, tt.wantLen)
		})
	}
}
