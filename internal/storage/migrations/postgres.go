package migrations

import (
	"context"
	"fmt"

	"steam-price-lab/internal/storage/postgres"
)

// RunPostgresMigrations applies every embedded Postgres file in lexical order.
// Files use IF NOT EXISTS, so running twice is a no-op.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	for _, m := range files {
		// pgx runs a multi-statement string as one simple-protocol batch
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}
