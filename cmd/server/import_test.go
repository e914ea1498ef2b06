package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"potterdex/internal/platform/config"
)

const testSeed = `[
  {"name": "Harry Potter", "species": "human", "yearOfBirth": 1980},
  {"name": "Hedwig", "species": "owl", "yearOfBirth": null}
]`

func writeMemoryConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "potterdex.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store_backend: memory\nlog:\n  level: error\n"), 0o600))
	return cfgPath
}

func TestImportCommand(t *testing.T) {
	seedPath := filepath.Join(t.TempDir(), "personajes.json")
	require.NoError(t, os.WriteFile(seedPath, []byte(testSeed), 0o600))

	configPath = writeMemoryConfig(t)
	t.Cleanup(func() { configPath = "" })

	cmd := newImportCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--seed", seedPath})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Imported 2 characters from "+seedPath)
}

func TestImportCommandMissingSeed(t *testing.T) {
	configPath = writeMemoryConfig(t)
	t.Cleanup(func() { configPath = "" })

	cmd := newImportCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--seed", filepath.Join(t.TempDir(), "missing.json")})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "importing")
}

func TestBuildDependenciesMemoryBackend(t *testing.T) {
	cfg := config.Default()
	cfg.StoreBackend = config.BackendMemory
	_, log, err := loadConfig()
	require.NoError(t, err)

	deps, err := buildDependencies(context.Background(), cfg, log)
	require.NoError(t, err)
	require.NotNil(t, deps.service)
	require.NotNil(t, deps.audit)
	assert.Empty(t, deps.health)

	limiter, err := buildRateLimiter(context.Background(), deps)
	require.NoError(t, err)
	assert.NotNil(t, limiter)

	require.NoError(t, deps.close(context.Background()))
	assert.Empty(t, deps.closers)
}
