package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/axi1912/Easy-Customs/integration_tests/containers"
)

// TestEnvironment holds the containers and connections shared by a test package.
type TestEnvironment struct {
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	DB            *bun.DB
	DSN           string
	NatsURL       string
}

// NewTestEnvironment starts Postgres and NATS and migrates the schema.
func NewTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pg, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, err
	}

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		cleanupContainers(context.Background(), pg, nil)
		return nil, err
	}

	db := bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn))), pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		cleanupContainers(context.Background(), pg, natsContainer)
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := RunMigrations(ctx, db, dsn); err != nil {
		_ = db.Close()
		cleanupContainers(context.Background(), pg, natsContainer)
		return nil, err
	}

	return &TestEnvironment{
		PgContainer:   pg,
		NatsContainer: natsContainer,
		DB:            db,
		DSN:           dsn,
		NatsURL:       natsURL,
	}, nil
}

// Cleanup closes the database and terminates both containers.
func (env *TestEnvironment) Cleanup() {
	if env == nil {
		return
	}
	if env.DB != nil {
		if err := env.DB.Close(); err != nil {
			log.Printf("Failed to close test database: %v", err)
		}
	}
	cleanupContainers(context.Background(), env.PgContainer, env.NatsContainer)
}

func cleanupContainers(ctx context.Context, pg *postgres.PostgresContainer, natsContainer *nats.NATSContainer) {
	if pg != nil {
		if err := pg.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate postgres container: %v", err)
		}
	}
	if natsContainer != nil {
		if err := natsContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate NATS container: %v", err)
		}
	}
}
