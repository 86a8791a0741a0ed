// Package pgtest starts a throwaway Postgres for repository test suites.
package pgtest

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-flower-shop/internal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// Start runs a postgres container, applies the schema and returns the container
// together with a pool connected to it.
func Start(ctx context.Context) (testcontainers.Container, *pgxpool.Pool, error) {
	container, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("flowers"),
		tcpostgres.WithUsername("app"),
		tcpostgres.WithPassword("secret"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("tcpostgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, nil, fmt.Errorf("container.ConnectionString: %w", err)
	}

	pool, err := postgres.Connect(ctx, connStr)
	if err != nil {
		return container, nil, fmt.Errorf("postgres.Connect: %w", err)
	}

	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return container, nil, fmt.Errorf("postgres.Migrate: %w", err)
	}

	return container, pool, nil
}

// Truncate wipes every storefront table between test cases.
func Truncate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `TRUNCATE TABLE order_items, orders, flowers, users,
		type_recipient_translations, type_recipients,
		status_deliver_translations, status_delivers RESTART IDENTITY CASCADE`)
	return err
}
