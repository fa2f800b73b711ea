package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Dataset configuration.
	DataSource      string // csv or sqlite
	DataPath        string
	DataFormat      string // auto, long or wide (csv only)
	SQLiteTable     string
	DuplicatePolicy string // last or reject
	VariablesFile   string
	DefaultVariable string

	// Boundary geometry, optional.
	BoundariesPath       string
	BoundaryNameProperty string

	AutoplayInterval time.Duration
	FrameCacheSize   int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// View publishing, feature-flagged via KAFKA_ENABLED.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaFrameTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	interval, err := time.ParseDuration(sharedcfg.EnvOrDefault("AUTOPLAY_INTERVAL", "1s"))
	if err != nil || interval <= 0 {
		return nil, errors.New("invalid AUTOPLAY_INTERVAL")
	}

	cfg := &Config{
		DataSource:      strings.ToLower(sharedcfg.EnvOrDefault("DATA_SOURCE", "csv")),
		DataPath:        sharedcfg.EnvOrDefault("DATA_PATH", "data/modis_states.csv"),
		DataFormat:      strings.ToLower(sharedcfg.EnvOrDefault("DATA_FORMAT", "auto")),
		SQLiteTable:     sharedcfg.EnvOrDefault("SQLITE_TABLE", "observations"),
		DuplicatePolicy: strings.ToLower(sharedcfg.EnvOrDefault("DUPLICATE_POLICY", "last")),
		VariablesFile:   os.Getenv("VARIABLES_FILE"),
		DefaultVariable: os.Getenv("DEFAULT_VARIABLE"),

		BoundariesPath:       os.Getenv("BOUNDARIES_PATH"),
		BoundaryNameProperty: sharedcfg.EnvOrDefault("BOUNDARY_NAME_PROPERTY", "name"),

		AutoplayInterval: interval,
		FrameCacheSize:   parseFrameCacheSize(),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:    os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaFrameTopic: sharedcfg.EnvOrDefault("KAFKA_FRAME_TOPIC", "choropleth-views"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DataSource {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("invalid DATA_SOURCE %q: want csv or sqlite", c.DataSource)
	}
	if c.DataPath == "" {
		return errors.New("DATA_PATH is required")
	}
	switch c.DataFormat {
	case "auto", "long", "wide":
	default:
		return fmt.Errorf("invalid DATA_FORMAT %q: want auto, long or wide", c.DataFormat)
	}
	switch c.DuplicatePolicy {
	case "last", "reject":
	default:
		return fmt.Errorf("invalid DUPLICATE_POLICY %q: want last or reject", c.DuplicatePolicy)
	}
	if c.DataSource == "sqlite" && c.SQLiteTable == "" {
		return errors.New("SQLITE_TABLE is required when DATA_SOURCE is sqlite")
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaFrameTopic == "" {
			return errors.New("KAFKA_FRAME_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	return nil
}

// parseFrameCacheSize falls back to the default on bad input. Zero disables
// the cache.
func parseFrameCacheSize() int {
	if s := os.Getenv("FRAME_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return 256
}
