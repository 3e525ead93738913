package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults applied when the corresponding environment variable is unset
const (
	DefaultDatabasePath   = "db.sqlite3"
	DefaultBatchSize      = 100
	DefaultMaxWorkers     = 4
	DefaultCheckpointFile = "library_builder_checkpoint.txt"
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 8080
)

// Config holds the environment-driven settings for both scan and server modes
type Config struct {
	DatabasePath   string
	MediaFolder    string
	BatchSize      int
	MaxWorkers     int
	CheckpointFile string
	Host           string
	Port           int
	TokenSecret    string
	CORSOrigins    []string
}

// Load reads configuration from environment variables. Malformed numeric
// values are reported as errors rather than silently replaced.
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:   getEnv("DATABASE_PATH", DefaultDatabasePath),
		MediaFolder:    os.Getenv("MEDIA_FOLDER"),
		CheckpointFile: getEnv("CHECKPOINT_FILE", DefaultCheckpointFile),
		Host:           getEnv("HOST", DefaultHost),
		TokenSecret:    os.Getenv("TOKEN_SECRET"),
	}

	var err error
	if cfg.BatchSize, err = getEnvInt("BATCH_SIZE", DefaultBatchSize); err != nil {
		return nil, err
	}
	if cfg.MaxWorkers, err = getEnvInt("MAX_WORKERS", DefaultMaxWorkers); err != nil {
		return nil, err
	}
	if cfg.Port, err = getEnvInt("PORT", DefaultPort); err != nil {
		return nil, err
	}

	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("BATCH_SIZE must be at least 1, got %d", cfg.BatchSize)
	}
	if cfg.MaxWorkers < 1 {
		return nil, fmt.Errorf("MAX_WORKERS must be at least 1, got %d", cfg.MaxWorkers)
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}

	return cfg, nil
}

// ValidateScan checks the settings required to run the ingestion pipeline
func (c *Config) ValidateScan() error {
	if c.MediaFolder == "" {
		return fmt.Errorf("MEDIA_FOLDER must be set to the root of the music library")
	}

	info, err := os.Stat(c.MediaFolder)
	if err != nil {
		return fmt.Errorf("MEDIA_FOLDER %q is not accessible: %w", c.MediaFolder, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("MEDIA_FOLDER %q is not a directory", c.MediaFolder)
	}

	return nil
}

// ValidateServer checks the settings required to run the streaming server.
// The token secret is required with no fallback: a guessable signing key
// would let anyone mint valid tokens.
func (c *Config) ValidateServer() error {
	if c.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET must be set (64 hex characters, e.g. `openssl rand -hex 32`)")
	}

	key, err := hex.DecodeString(c.TokenSecret)
	if err != nil {
		return fmt.Errorf("TOKEN_SECRET is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return fmt.Errorf("TOKEN_SECRET must decode to 32 bytes, got %d", len(key))
	}

	return nil
}

// TokenKey returns the decoded 32-byte token signing key.
// ValidateServer must have succeeded first.
func (c *Config) TokenKey() []byte {
	key, _ := hex.DecodeString(c.TokenSecret)
	return key
}

// Addr returns the host:port bind address for the HTTP server
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}
