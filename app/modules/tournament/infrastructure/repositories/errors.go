package tournamentdb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNoRowsAffected indicates a write matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
