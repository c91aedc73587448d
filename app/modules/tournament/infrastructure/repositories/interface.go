package tournamentdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
)

// Repository defines the contract for tournament persistence.
type Repository interface {
	// InsertResult appends one result to the log. Results are never updated.
	InsertResult(ctx context.Context, db bun.IDB, result tournamentdomain.MatchResult) error

	// UpsertRegistration writes the latest registration record of a team unless a
	// newer revision is already stored.
	UpsertRegistration(ctx context.Context, db bun.IDB, record tournamentdomain.RegistrationRecord) error

	// ListResults returns every result of a tournament in submission order.
	ListResults(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamentdomain.MatchResult, error)

	// ListRegistrations returns the registration records of a tournament.
	ListRegistrations(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamentdomain.RegistrationRecord, error)

	// DeleteTournament removes the results and registrations of one tournament.
	// It returns ErrNoRowsAffected when there was nothing to delete.
	DeleteTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) error
}
