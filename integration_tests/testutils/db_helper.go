package testutils

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	tournamentqueue "github.com/axi1912/Easy-Customs/app/modules/tournament/infrastructure/queue"
	tournamentmigrations "github.com/axi1912/Easy-Customs/app/modules/tournament/infrastructure/repositories/migrations"
)

var appTables = []string{"match_results", "team_registrations"}

// RunMigrations applies the tournament schema and the River queue schema.
func RunMigrations(ctx context.Context, db *bun.DB, dsn string) error {
	migrator := migrate.NewMigrator(db, tournamentmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run tournament migrations: %w", err)
	}
	log.Printf("Ran tournament migrations group #%d", group.ID)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()
	return tournamentqueue.Migrate(ctx, pool)
}

// CleanupDatabase empties the application tables and the River job table.
func CleanupDatabase(ctx context.Context, db *bun.DB) error {
	query := fmt.Sprintf("TRUNCATE TABLE %s", strings.Join(appTables, ", "))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM river_job"); err != nil {
		return fmt.Errorf("failed to cleanup river jobs: %w", err)
	}
	return nil
}
