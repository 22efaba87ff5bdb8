package testutils

import (
	"context"
	"fmt"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/Black-And-White-Club/crownkeeper/integration_tests/containers"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// TestEnvironment holds the containers shared by every integration test in
// a package.
type TestEnvironment struct {
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	PostgresDSN   string
	NatsURL       string
}

var (
	envOnce   sync.Once
	globalEnv *TestEnvironment
	envErr    error
)

// GetOrCreateTestEnv starts the containers on first use. Tests are skipped
// under -short.
func GetOrCreateTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	envOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		globalEnv, envErr = newTestEnvironment(ctx)
	})
	if envErr != nil {
		t.Fatalf("failed to set up integration environment: %v", envErr)
	}
	return globalEnv
}

func newTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		if terminateErr := pgContainer.Terminate(ctx); terminateErr != nil {
			log.Printf("Failed to terminate postgres container: %v", terminateErr)
		}
		return nil, fmt.Errorf("failed to setup nats container: %w", err)
	}

	return &TestEnvironment{
		PgContainer:   pgContainer,
		NatsContainer: natsContainer,
		PostgresDSN:   dsn,
		NatsURL:       natsURL,
	}, nil
}

// Shutdown terminates the shared containers, if any were started.
func Shutdown(ctx context.Context) {
	if globalEnv == nil {
		return
	}
	if err := globalEnv.NatsContainer.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate NATS container: %v", err)
	}
	if err := globalEnv.PgContainer.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate postgres container: %v", err)
	}
}
