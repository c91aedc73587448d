package tournamentqueue

// TournamentStartJob starts a tournament at its scheduled time. The id pins
// the tournament the start was scheduled for.
type TournamentStartJob struct {
	TournamentID string `json:"tournament_id"`
}

// Kind returns the job type identifier for River
func (TournamentStartJob) Kind() string { return "tournament_start" }

// JobInfo represents information about a scheduled job (for debugging/monitoring)
type JobInfo struct {
	ID           int64  `json:"id"`
	Kind         string `json:"kind"`
	TournamentID string `json:"tournament_id"`
	State        string `json:"state"`
	ScheduledAt  string `json:"scheduled_at"`
	Attempt      int    `json:"attempt"`
	MaxAttempts  int    `json:"max_attempts"`
}
