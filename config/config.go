package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
	gamedb "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/repositories"
)

// Storage backends.
const (
	BackendMemory    = "memory"
	BackendFile      = "file"
	BackendJetStream = "jetstream"
	BackendPostgres  = "postgres"
)

// Event transports.
const (
	EventsGoChannel = "gochannel"
	EventsNATS      = "nats"
)

const (
	DefaultSessionTTL   = 24 * time.Hour
	DefaultBucket       = "crownkeeper_sessions"
	DefaultReapInterval = time.Hour
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config struct to hold the configuration settings
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	NATS          NATSConfig          `yaml:"nats"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	Game          GameConfig          `yaml:"game"`
	Events        EventsConfig        `yaml:"events"`
	Archive       ArchiveConfig       `yaml:"archive"`
	Sessions      SessionsConfig      `yaml:"sessions"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig selects where the game is mirrored.
type StorageConfig struct {
	Backend    string        `yaml:"backend"`
	Key        string        `yaml:"key"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	Dir        string        `yaml:"dir"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL          string `yaml:"url"`
	Bucket       string `yaml:"bucket"`
	NKeySeedFile string `yaml:"nkey_seed_file"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// GameConfig holds rules that are a matter of house preference.
type GameConfig struct {
	TurnOrder string `yaml:"turn_order"`
}

// EventsConfig selects the transport for game events.
type EventsConfig struct {
	Backend string `yaml:"backend"`
}

// ArchiveConfig enables archiving finished games when Dir is set.
type ArchiveConfig struct {
	Dir string `yaml:"dir"`
}

// SessionsConfig tunes the expired session reaper.
type SessionsConfig struct {
	ReapInterval time.Duration `yaml:"reap_interval"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	PushgatewayURL string `yaml:"pushgateway_url"`
	Environment    string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file, falling back to the
// environment when the file does not exist. Environment variables always win.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return finish(&cfg)
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("STORAGE_KEY"); v != "" {
		cfg.Storage.Key = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL value: %w", err)
		}
		cfg.Storage.SessionTTL = d
	}
	if v := os.Getenv("STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_BUCKET"); v != "" {
		cfg.NATS.Bucket = v
	}
	if v := os.Getenv("NATS_NKEY_SEED_FILE"); v != "" {
		cfg.NATS.NKeySeedFile = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("TURN_ORDER"); v != "" {
		cfg.Game.TurnOrder = v
	}
	if v := os.Getenv("EVENTS_BACKEND"); v != "" {
		cfg.Events.Backend = v
	}
	if v := os.Getenv("ARCHIVE_DIR"); v != "" {
		cfg.Archive.Dir = v
	}
	if v := os.Getenv("REAP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REAP_INTERVAL value: %w", err)
		}
		cfg.Sessions.ReapInterval = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
	if v := os.Getenv("PUSHGATEWAY_URL"); v != "" {
		cfg.Observability.PushgatewayURL = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	return nil
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Key == "" {
		c.Storage.Key = gamedb.DefaultKey
	}
	if c.Storage.SessionTTL == 0 {
		c.Storage.SessionTTL = DefaultSessionTTL
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = gamedb.DefaultSessionDir()
	}
	if c.NATS.Bucket == "" {
		c.NATS.Bucket = DefaultBucket
	}
	if c.Game.TurnOrder == "" {
		c.Game.TurnOrder = string(gamedomain.OrderRotation)
	}
	if c.Events.Backend == "" {
		c.Events.Backend = EventsGoChannel
	}
	if c.Sessions.ReapInterval == 0 {
		c.Sessions.ReapInterval = DefaultReapInterval
	}
	if c.Observability.LogFormat == "" {
		c.Observability.LogFormat = "text"
	}
}

// Validate rejects settings no backend could run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile:
	case BackendJetStream:
		if c.NATS.URL == "" {
			return fmt.Errorf("%w: storage backend %q needs nats.url", ErrInvalidConfig, c.Storage.Backend)
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("%w: storage backend %q needs postgres.dsn", ErrInvalidConfig, c.Storage.Backend)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}

	if c.Storage.SessionTTL < 0 {
		return fmt.Errorf("%w: session_ttl must not be negative", ErrInvalidConfig)
	}
	if c.Sessions.ReapInterval < 0 {
		return fmt.Errorf("%w: reap_interval must not be negative", ErrInvalidConfig)
	}

	if _, err := gamedomain.ParseOrderStrategy(c.Game.TurnOrder); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Events.Backend {
	case EventsGoChannel:
	case EventsNATS:
		if c.NATS.URL == "" {
			return fmt.Errorf("%w: events backend %q needs nats.url", ErrInvalidConfig, c.Events.Backend)
		}
	default:
		return fmt.Errorf("%w: unknown events backend %q", ErrInvalidConfig, c.Events.Backend)
	}
	return nil
}

// TurnOrder returns the validated turn order strategy.
func (c *Config) TurnOrder() gamedomain.OrderStrategy {
	s, err := gamedomain.ParseOrderStrategy(c.Game.TurnOrder)
	if err != nil {
		return gamedomain.OrderRotation
	}
	return s
}
