package repository_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/oja-market/internal/migrations"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// startDocumentsDB runs a throwaway Postgres, applies the embedded schema
// and returns a pool connected to it.
func startDocumentsDB(ctx context.Context) (_ *postgres.PostgresContainer, _ *pgxpool.Pool, err error) {
	pc, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.WithDatabase("oja"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres.Run: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, testcontainers.TerminateContainer(pc))
		}
	}()

	connStr, err := pc.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, fmt.Errorf("pc.ConnectionString: %w", err)
	}

	if err := migrations.Up(connStr); err != nil {
		return nil, nil, fmt.Errorf("migrations.Up: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pool.Ping: %w", err)
	}

	return pc, pool, nil
}
