// Package config loads engine configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents the full engine configuration.
type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	WAL      WALConfig      `envPrefix:"WAL_"`
	Outbox   OutboxConfig   `envPrefix:"OUTBOX_"`
	Snapshot SnapshotConfig `envPrefix:"SNAPSHOT_"`
	Ingress  IngressConfig  `envPrefix:"INGRESS_"`
	Egress   EgressConfig   `envPrefix:"EGRESS_"`
}

type AppConfig struct {
	Name        string `env:"NAME" envDefault:"falcon"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

type WALConfig struct {
	Dir         string `env:"DIR" envDefault:"data/wal"`
	SegmentSize int64  `env:"SEGMENT_SIZE" envDefault:"67108864"`
}

type OutboxConfig struct {
	Dir string `env:"DIR" envDefault:"data/outbox"`
}

type SnapshotConfig struct {
	Dir      string        `env:"DIR" envDefault:"data/snapshot"`
	Interval time.Duration `env:"INTERVAL" envDefault:"30s"`
}

// IngressConfig is the command topic the engine consumes.
type IngressConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"orders"`
	GroupID string   `env:"GROUP_ID" envDefault:"falcon-engine"`
}

// EgressConfig is the market-data topic the broadcaster publishes to.
type EgressConfig struct {
	Brokers  []string      `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic    string        `env:"TOPIC" envDefault:"market-data"`
	Interval time.Duration `env:"INTERVAL" envDefault:"250ms"`
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
