package containers

import (
	"context"
	"fmt"
	"log"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// SetupPostgresContainer starts Postgres and returns it with a DSN that has
// TLS disabled. The caller terminates the container.
func SetupPostgresContainer(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("crownkeeper"),
		postgres.WithUsername("crownkeeper"),
		postgres.WithPassword("crownkeeper"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		if pgContainer != nil {
			if terminateErr := pgContainer.Terminate(ctx); terminateErr != nil {
				log.Printf("Failed to terminate postgres container: %v", terminateErr)
			}
		}
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		if terminateErr := pgContainer.Terminate(ctx); terminateErr != nil {
			log.Printf("Failed to terminate postgres container: %v", terminateErr)
		}
		return nil, "", fmt.Errorf("failed to get postgres connection string: %w", err)
	}

	log.Println("Postgres container ready.")
	return pgContainer, connStr, nil
}
