package tournamentmetrics

import (
	"context"
	"time"
)

// NoOpMetrics satisfies TournamentMetrics and records nothing.
type NoOpMetrics struct{}

func NewNoop() *NoOpMetrics { return &NoOpMetrics{} }

func (*NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (*NoOpMetrics) RecordJoinOutcome(context.Context, string)                              {}
func (*NoOpMetrics) RecordTeamActivated(context.Context)                                    {}
func (*NoOpMetrics) RecordResultSubmitted(context.Context, string, int)                     {}
func (*NoOpMetrics) RecordCollaboratorFailure(context.Context, string, string)              {}
func (*NoOpMetrics) SetRosterSize(context.Context, int, int)                                {}
func (*NoOpMetrics) RecordHandlerAttempt(context.Context, string)                           {}
func (*NoOpMetrics) RecordHandlerFailure(context.Context, string)                           {}

var _ TournamentMetrics = (*NoOpMetrics)(nil)
