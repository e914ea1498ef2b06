package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config is the full runtime configuration. Values come from Default, then an
// optional YAML file, then environment variables.
type Config struct {
	Server    Server    `yaml:"server"`
	Mongo     Mongo     `yaml:"mongo"`
	Redis     Redis     `yaml:"redis"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Audit     Audit     `yaml:"audit"`
	Log       Log       `yaml:"log"`
	// SeedFile is the static JSON array loaded by the import operation.
	SeedFile string `yaml:"seed_file"`
	// StoreBackend selects "mongo" (default) or "memory".
	StoreBackend string `yaml:"store_backend"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string        `yaml:"addr"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// TrustedProxies lists CIDRs or addresses whose X-Forwarded-For and
	// X-Real-IP headers are believed. Empty means clients connect directly.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// Mongo configures the document store.
type Mongo struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	Collection     string        `yaml:"collection"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	MaxPoolSize    uint64        `yaml:"max_pool_size"`
}

// Redis configures the optional shared rate limit store. Empty URL keeps
// rate limit state in process memory.
type Redis struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RateLimit bounds mutating requests per client IP. Zero disables limiting.
type RateLimit struct {
	RequestsPerWindow int           `yaml:"requests_per_window"`
	Window            time.Duration `yaml:"window"`
}

// Audit configures where mutation events go. No brokers means the log sink.
type Audit struct {
	KafkaBrokers []string `yaml:"kafka_brokers"`
	Topic        string   `yaml:"topic"`
	BufferSize   int      `yaml:"buffer_size"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config matching the local development setup.
func Default() Config {
	return Config{
		Server: Server{
			Addr:           "127.0.0.1:8080",
			MetricsAddr:    ":9090",
			MaxBodyBytes:   1 << 20,
			RequestTimeout: 30 * time.Second,
		},
		Mongo: Mongo{
			URI:            "mongodb://127.0.0.1:27017",
			Database:       "harry",
			Collection:     "personajes",
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    20,
		},
		Redis: Redis{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		RateLimit: RateLimit{
			RequestsPerWindow: 60,
			Window:            time.Minute,
		},
		Audit: Audit{
			Topic:      "potterdex.audit",
			BufferSize: 256,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		SeedFile:     "personajes.json",
		StoreBackend: BackendMongo,
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" || c.Mongo.Collection == "" {
			return fmt.Errorf("mongo backend requires uri, database and collection")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q (valid: mongo, memory)", c.StoreBackend)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.RateLimit.RequestsPerWindow > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive when limiting is enabled")
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("POTTERDEX_ADDR", &c.Server.Addr)
	if v, ok := lookup("METRICS_ADDR"); ok {
		// explicit empty value disables the metrics listener
		c.Server.MetricsAddr = v
	}
	str("MONGO_URI", &c.Mongo.URI)
	str("MONGO_DATABASE", &c.Mongo.Database)
	str("MONGO_COLLECTION", &c.Mongo.Collection)
	str("SEED_FILE", &c.SeedFile)
	str("STORE_BACKEND", &c.StoreBackend)
	str("REDIS_URL", &c.Redis.URL)
	str("AUDIT_TOPIC", &c.Audit.Topic)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Audit.KafkaBrokers = splitList(v)
	}
	if v, ok := lookup("TRUSTED_PROXIES"); ok && v != "" {
		c.Server.TrustedProxies = splitList(v)
	}
	if v, ok := lookup("MAX_BODY_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_BODY_BYTES: %w", err)
		}
		c.Server.MaxBodyBytes = n
	}
	if v, ok := lookup("RATE_LIMIT_PER_MINUTE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err)
		}
		c.RateLimit.RequestsPerWindow = n
		c.RateLimit.Window = time.Minute
	}
	if v, ok := lookup("REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
		c.Server.RequestTimeout = d
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
