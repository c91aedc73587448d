package tournamentmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating match_results and team_registrations tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS match_results (
					id UUID PRIMARY KEY,
					tournament_id UUID NOT NULL,
					team_name VARCHAR(64) NOT NULL,
					position INTEGER NOT NULL CHECK (position BETWEEN 1 AND 15),
					kills INTEGER NOT NULL CHECK (kills >= 0),
					multiplier DOUBLE PRECISION NOT NULL,
					score INTEGER NOT NULL,
					scoring_mode VARCHAR(20) NOT NULL,
					submitted_by TEXT NOT NULL,
					submitter_id VARCHAR(32),
					submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_match_results_tournament ON match_results(tournament_id, submitted_at);
			`); err != nil {
				return fmt.Errorf("failed to create match_results table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS team_registrations (
					team_id UUID PRIMARY KEY,
					tournament_id UUID NOT NULL,
					team_name VARCHAR(64) NOT NULL,
					tag VARCHAR(10),
					captain TEXT,
					players JSONB NOT NULL DEFAULT '[]'::jsonb,
					recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_team_registrations_tournament ON team_registrations(tournament_id);
			`); err != nil {
				return fmt.Errorf("failed to create team_registrations table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping match_results and team_registrations tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS team_registrations;`); err != nil {
				return fmt.Errorf("failed to drop team_registrations table: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS match_results;`); err != nil {
				return fmt.Errorf("failed to drop match_results table: %w", err)
			}
			return nil
		})
	})
}
