package tournamentdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new tournament repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// InsertResult appends one result to the log.
func (r *Impl) InsertResult(ctx context.Context, db bun.IDB, result tournamentdomain.MatchResult) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(matchResultFromDomain(result)).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert match result: %w", err)
	}
	return nil
}

// UpsertRegistration writes the latest registration record of a team. A record
// with a revision at or below the stored one is dropped.
func (r *Impl) UpsertRegistration(ctx context.Context, db bun.IDB, record tournamentdomain.RegistrationRecord) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(registrationFromDomain(record)).
		On("CONFLICT (team_id) DO UPDATE").
		Set("team_name = EXCLUDED.team_name").
		Set("tag = EXCLUDED.tag").
		Set("captain = EXCLUDED.captain").
		Set("players = EXCLUDED.players").
		Set("revision = EXCLUDED.revision").
		Set("recorded_at = EXCLUDED.recorded_at").
		Where("?TableAlias.revision < EXCLUDED.revision").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert team registration: %w", err)
	}
	return nil
}

// ListResults returns every result of a tournament in submission order.
func (r *Impl) ListResults(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamentdomain.MatchResult, error) {
	db = r.resolveDB(db)
	var rows []MatchResult
	err := db.NewSelect().
		Model(&rows).
		Where("tournament_id = ?", tournamentID).
		Order("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	out := make([]tournamentdomain.MatchResult, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// ListRegistrations returns the registration records of a tournament.
func (r *Impl) ListRegistrations(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamentdomain.RegistrationRecord, error) {
	db = r.resolveDB(db)
	var rows []TeamRegistration
	err := db.NewSelect().
		Model(&rows).
		Where("tournament_id = ?", tournamentID).
		Order("recorded_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list team registrations: %w", err)
	}
	out := make([]tournamentdomain.RegistrationRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// DeleteTournament removes the results and registrations of one tournament.
func (r *Impl) DeleteTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) error {
	db = r.resolveDB(db)
	var total int64
	for _, model := range []any{(*MatchResult)(nil), (*TeamRegistration)(nil)} {
		res, err := db.NewDelete().Model(model).Where("tournament_id = ?", tournamentID).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear tournament tables: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		total += rows
	}
	if total == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
