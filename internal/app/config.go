package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/moviegraph/internal/data/graph"
	"github.com/yungbote/moviegraph/internal/ingestion/csvsource"
	"github.com/yungbote/moviegraph/internal/observability"
	"github.com/yungbote/moviegraph/internal/platform/envutil"
	"github.com/yungbote/moviegraph/internal/platform/neo4jdb"
)

type IngestConfig struct {
	MoviesPath  string `yaml:"movies_path"`
	CreditsPath string `yaml:"credits_path"`
	ChunkSize   int    `yaml:"chunk_size"`
	// Limit caps the rows read from each file; 0 reads everything.
	Limit int `yaml:"limit"`
}

type CacheConfig struct {
	// RedisAddr enables the query cache when set.
	RedisAddr string        `yaml:"redis_addr"`
	Prefix    string        `yaml:"prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

type Config struct {
	LogMode string `yaml:"log_mode"`
	// LedgerDSN is a postgres URL/DSN or a sqlite path. Empty disables the run ledger.
	LedgerDSN string                   `yaml:"ledger_dsn"`
	HTTPAddr  string                   `yaml:"http_addr"`
	Neo4j     neo4jdb.Config           `yaml:"neo4j"`
	Ingest    IngestConfig             `yaml:"ingest"`
	Cache     CacheConfig              `yaml:"cache"`
	Otel      observability.OtelConfig `yaml:"otel"`
	// MetricsEnabled serves /metrics and records ingestion and query metrics.
	MetricsEnabled bool `yaml:"metrics_enabled"`
}

func DefaultConfig() Config {
	return Config{
		LogMode:   "dev",
		LedgerDSN: "moviegraph.db",
		HTTPAddr:  ":8080",
		Neo4j: neo4jdb.Config{
			URI:      "neo4j://localhost:7687",
			User:     "neo4j",
			Database: "neo4j",
			Timeout:  10 * time.Second,
		},
		Ingest: IngestConfig{
			MoviesPath:  "tmdb_5000_movies.csv",
			CreditsPath: "tmdb_5000_credits.csv",
			ChunkSize:   csvsource.DefaultChunkSize,
		},
		Cache: CacheConfig{
			Prefix: "moviegraph",
			TTL:    graph.DefaultCacheTTL,
		},
		Otel: observability.OtelConfig{
			ServiceName: "moviegraph",
			SampleRatio: 1,
		},
		MetricsEnabled: true,
	}
}

// LoadConfig layers defaults, the YAML file at path (skipped when path is empty)
// and the environment, in that order.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogMode = envutil.String("LOG_MODE", c.LogMode)
	c.LedgerDSN = envutil.String("LEDGER_DSN", c.LedgerDSN)
	c.HTTPAddr = envutil.String("HTTP_ADDR", c.HTTPAddr)

	c.Neo4j.URI = envutil.String("NEO4J_URI", c.Neo4j.URI)
	c.Neo4j.User = envutil.String("NEO4J_USER", c.Neo4j.User)
	c.Neo4j.Password = envutil.String("NEO4J_PASSWORD", c.Neo4j.Password)
	c.Neo4j.Database = envutil.String("NEO4J_DB_NAME", c.Neo4j.Database)
	c.Neo4j.MaxPoolSize = envutil.Int("NEO4J_MAX_POOL_SIZE", c.Neo4j.MaxPoolSize)
	c.Neo4j.ConnectAttempts = envutil.Int("NEO4J_CONNECT_ATTEMPTS", c.Neo4j.ConnectAttempts)
	if secs := envutil.Int("NEO4J_TIMEOUT_SECONDS", 0); secs > 0 {
		c.Neo4j.Timeout = time.Duration(secs) * time.Second
	}

	c.Ingest.MoviesPath = envutil.String("MOVIES_DATASET_CSV_PATH", c.Ingest.MoviesPath)
	c.Ingest.CreditsPath = envutil.String("CREDITS_DATASET_CSV_PATH", c.Ingest.CreditsPath)
	c.Ingest.ChunkSize = envutil.Int("INGEST_CHUNK_SIZE", c.Ingest.ChunkSize)
	c.Ingest.Limit = envutil.Int("INGEST_LIMIT", c.Ingest.Limit)

	c.Cache.RedisAddr = envutil.String("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.Prefix = envutil.String("CACHE_PREFIX", c.Cache.Prefix)
	if secs := envutil.Int("CACHE_TTL_SECONDS", 0); secs > 0 {
		c.Cache.TTL = time.Duration(secs) * time.Second
	}

	c.MetricsEnabled = envutil.Bool("METRICS_ENABLED", c.MetricsEnabled)
	c.Otel.Enabled = envutil.Bool("OTEL_ENABLED", c.Otel.Enabled)
	c.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", c.Otel.ServiceName)
	c.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", c.Otel.Environment)
	c.Otel.Version = envutil.String("OTEL_SERVICE_VERSION", c.Otel.Version)
	c.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", c.Otel.Endpoint)
	c.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", c.Otel.Insecure)
	c.Otel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", c.Otel.SampleRatio)
	if raw := envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""); raw != "" {
		c.Otel.Headers = observability.ParseHeaders(raw)
	}
}

// Validate checks what every command needs: a complete graph connection.
func (c Config) Validate() error {
	if err := c.Neo4j.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Ingest.ChunkSize < 0 {
		return fmt.Errorf("config: ingest chunk_size must be >= 0")
	}
	if c.Ingest.Limit < 0 {
		return fmt.Errorf("config: ingest limit must be >= 0")
	}
	return nil
}
