// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/lore-index/internal/domain/entities"
	"github.com/ersonp/lore-index/internal/domain/services"
)

const (
	// DefaultConfigDir is the directory name for loreindex configuration.
	DefaultConfigDir = ".loreindex"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultSnapshotFile is the default snapshot database file name.
	DefaultSnapshotFile = "index.db"
	// DefaultTopK is the default number of results per query.
	DefaultTopK = 10
	// DefaultPort is the default HTTP serving port.
	DefaultPort = 8022
)

// Config holds static configuration (read-only after init).
type Config struct {
	BM25         BM25Config         `yaml:"bm25,omitempty"`
	FieldWeights map[string]float64 `yaml:"field_weights,omitempty"`
	Search       SearchConfig       `yaml:"search,omitempty"`
	Snapshot     SnapshotConfig     `yaml:"snapshot,omitempty"`
	Server       ServerConfig       `yaml:"server,omitempty"`
	Log          LogConfig          `yaml:"log,omitempty"`
}

// BM25Config holds the scoring constants.
type BM25Config struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
}

// SearchConfig holds query defaults.
type SearchConfig struct {
	DefaultTopK int `yaml:"default_top_k"`
	// Stopwords is the default query-side stopword language ("de",
	// "en"); empty disables filtering.
	Stopwords string `yaml:"stopwords,omitempty"`
}

// SnapshotConfig holds configuration for the persisted index.
type SnapshotConfig struct {
	// Path is the file path to the snapshot SQLite database.
	Path string `yaml:"path,omitempty"`
}

// ServerConfig holds configuration for the HTTP search server.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Pretty bool   `yaml:"pretty,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		BM25: BM25Config{
			K1: services.DefaultK1,
			B:  services.DefaultB,
		},
		FieldWeights: services.DefaultFieldWeights(),
		Search: SearchConfig{
			DefaultTopK: DefaultTopK,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: DefaultPort,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the .loreindex directory in the given
// path. A missing config file is not an error; defaults apply.
func Load(basePath string) (*Config, error) {
	cfg := Default()
	cfg.Snapshot.Path = SnapshotPath(basePath)

	data, err := os.ReadFile(ConfigFilePath(basePath))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if path := os.Getenv("LOREINDEX_SNAPSHOT"); path != "" {
		c.Snapshot.Path = path
	}
	if stopwords, ok := os.LookupEnv("STOPWORDS"); ok {
		c.Search.Stopwords = stopwords
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%w: PORT must be an integer, got %q", entities.ErrInvalidArgument, port)
		}
		c.Server.Port = p
	}
	return nil
}

// Validate rejects malformed configuration as an invalid-argument error.
func (c *Config) Validate() error {
	if c.BM25.K1 < 0 {
		return fmt.Errorf("%w: k1 must be non-negative, got %v", entities.ErrInvalidArgument, c.BM25.K1)
	}
	if c.BM25.B < 0 || c.BM25.B > 1 {
		return fmt.Errorf("%w: b must be within [0, 1], got %v", entities.ErrInvalidArgument, c.BM25.B)
	}
	if c.Search.DefaultTopK <= 0 {
		return fmt.Errorf("%w: default_top_k must be positive, got %d", entities.ErrInvalidArgument, c.Search.DefaultTopK)
	}
	if _, ok := services.StopwordsFor(c.Search.Stopwords); !ok {
		return fmt.Errorf("%w: unknown stopword language %q", entities.ErrInvalidArgument, c.Search.Stopwords)
	}
	for field, weight := range c.FieldWeights {
		if weight < 0 {
			return fmt.Errorf("%w: field weight for %q must be non-negative, got %v", entities.ErrInvalidArgument, field, weight)
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port must be within [1, 65535], got %d", entities.ErrInvalidArgument, c.Server.Port)
	}
	return nil
}

// Params returns the BM25 constants as scorer parameters.
func (c *Config) Params() services.Params {
	return services.Params{K1: c.BM25.K1, B: c.BM25.B}
}

// ConfigDir returns the path to the .loreindex config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// SnapshotPath returns the default snapshot database path.
func SnapshotPath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultSnapshotFile)
}
