package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "harry", cfg.Mongo.Database)
	assert.Equal(t, "personajes", cfg.Mongo.Collection)
	assert.Equal(t, "personajes.json", cfg.SeedFile)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envFrom(map[string]string{
		"POTTERDEX_ADDR":        ":9999",
		"MONGO_URI":             "mongodb://db:27017",
		"STORE_BACKEND":         "memory",
		"KAFKA_BROKERS":         "k1:9092, k2:9092,",
		"MAX_BODY_BYTES":        "2048",
		"RATE_LIMIT_PER_MINUTE": "0",
		"REQUEST_TIMEOUT":       "5s",
		"METRICS_ADDR":          "",
		"TRUSTED_PROXIES":       "10.0.0.0/8, 192.0.2.1",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Audit.KafkaBrokers)
	assert.Equal(t, int64(2048), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 0, cfg.RateLimit.RequestsPerWindow)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Empty(t, cfg.Server.MetricsAddr, "explicit empty METRICS_ADDR disables metrics")
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.Server.TrustedProxies)
}

func TestApplyEnvRejectsMalformedNumbers(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envFrom(map[string]string{"MAX_BODY_BYTES": "lots"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_BODY_BYTES")
}

func TestValidate(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		cfg := Default()
		cfg.StoreBackend = "postgres"
		assert.Error(t, cfg.Validate())
	})
	t.Run("mongo without collection", func(t *testing.T) {
		cfg := Default()
		cfg.Mongo.Collection = ""
		assert.Error(t, cfg.Validate())
	})
	t.Run("memory ignores mongo settings", func(t *testing.T) {
		cfg := Default()
		cfg.StoreBackend = BackendMemory
		cfg.Mongo = Mongo{}
		assert.NoError(t, cfg.Validate())
	})
	t.Run("non-positive body limit", func(t *testing.T) {
		cfg := Default()
		cfg.Server.MaxBodyBytes = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "potterdex.yaml")
	content := `
server:
  addr: ":8181"
  request_timeout: 10s
  trusted_proxies: ["172.16.0.0/12"]
mongo:
  database: hogwarts
seed_file: /data/seed.json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"172.16.0.0/12"}, cfg.Server.TrustedProxies)
	assert.Equal(t, "hogwarts", cfg.Mongo.Database)
	assert.Equal(t, "personajes", cfg.Mongo.Collection, "unset keys keep defaults")
	assert.Equal(t, "/data/seed.json", cfg.SeedFile)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}
