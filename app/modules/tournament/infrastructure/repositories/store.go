package tournamentdb

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
)

// Store adapts the repository to the service's result store.
type Store struct {
	db   *bun.DB
	repo Repository
}

// NewStore creates a result store backed by db.
func NewStore(db *bun.DB) *Store {
	return &Store{db: db, repo: NewRepository(db)}
}

func (s *Store) AppendResult(ctx context.Context, result tournamentdomain.MatchResult) error {
	return s.repo.InsertResult(ctx, nil, result)
}

func (s *Store) AppendRegistration(ctx context.Context, record tournamentdomain.RegistrationRecord) error {
	return s.repo.UpsertRegistration(ctx, nil, record)
}

func (s *Store) QueryResults(ctx context.Context, tournamentID uuid.UUID) ([]tournamentdomain.MatchResult, error) {
	return s.repo.ListResults(ctx, nil, tournamentID)
}

// Registrations lists the stored registration records of a tournament.
func (s *Store) Registrations(ctx context.Context, tournamentID uuid.UUID) ([]tournamentdomain.RegistrationRecord, error) {
	return s.repo.ListRegistrations(ctx, nil, tournamentID)
}

// ClearAll wipes both logs of one tournament in one transaction.
func (s *Store) ClearAll(ctx context.Context, tournamentID uuid.UUID) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.repo.DeleteTournament(ctx, tx, tournamentID); err != nil && !errors.Is(err, ErrNoRowsAffected) {
			return err
		}
		return nil
	})
}
