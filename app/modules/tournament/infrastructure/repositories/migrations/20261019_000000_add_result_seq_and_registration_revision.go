package tournamentmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding match_results.seq and team_registrations.revision...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE match_results ADD COLUMN IF NOT EXISTS seq BIGSERIAL;
				CREATE INDEX IF NOT EXISTS idx_match_results_tournament_seq ON match_results(tournament_id, seq);
				DROP INDEX IF EXISTS idx_match_results_tournament;
			`); err != nil {
				return fmt.Errorf("failed to add match_results.seq: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE team_registrations ADD COLUMN IF NOT EXISTS revision INTEGER NOT NULL DEFAULT 0;
				UPDATE team_registrations SET revision = jsonb_array_length(players);
			`); err != nil {
				return fmt.Errorf("failed to add team_registrations.revision: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping match_results.seq and team_registrations.revision...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE team_registrations DROP COLUMN IF EXISTS revision;
				CREATE INDEX IF NOT EXISTS idx_match_results_tournament ON match_results(tournament_id, submitted_at);
				DROP INDEX IF EXISTS idx_match_results_tournament_seq;
				ALTER TABLE match_results DROP COLUMN IF EXISTS seq;
			`); err != nil {
				return fmt.Errorf("failed to drop seq and revision columns: %w", err)
			}
			return nil
		})
	})
}
