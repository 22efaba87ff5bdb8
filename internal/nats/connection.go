package natsutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Black-And-White-Club/crownkeeper/internal/observability/attr"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
)

// ErrMissingURL is returned when no server URL is configured.
var ErrMissingURL = errors.New("nats url is required")

// ConnectionConfig describes how to reach the NATS server.
type ConnectionConfig struct {
	URL          string
	Name         string
	NKeySeedFile string
	Timeout      time.Duration
}

// Options builds the client options for cfg, including nkey authentication
// when a seed file is configured.
func Options(cfg ConnectionConfig, logger *slog.Logger) ([]nats.Option, error) {
	name := cfg.Name
	if name == "" {
		name = "crownkeeper"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(timeout),
		nats.ReconnectWait(time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				logger.Error("NATS subscription error", attr.String("subject", s.Subject), attr.Error(err))
				return
			}
			logger.Error("NATS connection error", attr.Error(err))
		}),
	}

	if cfg.NKeySeedFile != "" {
		opt, err := NKeyOption(cfg.NKeySeedFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

// NKeyOption loads a user seed and signs server nonces with it.
func NKeyOption(seedFile string) (nats.Option, error) {
	raw, err := os.ReadFile(seedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read nkey seed: %w", err)
	}

	kp, err := nkeys.FromSeed([]byte(strings.TrimSpace(string(raw))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive nkey public key: %w", err)
	}

	return nats.Nkey(pub, func(nonce []byte) ([]byte, error) {
		return kp.Sign(nonce)
	}), nil
}

// Connect opens a connection to cfg.URL.
func Connect(cfg ConnectionConfig, logger *slog.Logger) (*nats.Conn, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	opts, err := Options(cfg, logger)
	if err != nil {
		return nil, err
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Debug("Connected to NATS", attr.String("url", conn.ConnectedUrlRedacted()))
	return conn, nil
}
