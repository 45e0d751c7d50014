package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/schedkit/timetable-bot/internal/ics"
	"github.com/schedkit/timetable-bot/internal/timetable"
)

// SyncService materializes the active schedule of a user into dated calendar
// events and reconciles them into the calendar sink.
type SyncService struct {
	timetables *TimetableService
	sink       ics.Sink
	logger     *zap.Logger
}

func NewSyncService(timetables *TimetableService, sink ics.Sink, logger *zap.Logger) *SyncService {
	return &SyncService{
		timetables: timetables,
		sink:       sink,
		logger:     logger,
	}
}

// Sync rebuilds the calendar sink from the user's active schedule. Re-running
// it converges on the same calendar state.
func (s *SyncService) Sync(ctx context.Context, userID int64, policy ics.SweepPolicy) (ics.ReconcileStats, error) {
	var stats ics.ReconcileStats

	schedule, rules, err := s.timetables.ActiveRules(ctx, userID)
	if err != nil {
		return stats, err
	}

	occurrences := timetable.Materialize(rules, s.timetables.Periods(), s.timetables.SemesterStart())

	stats, err = s.sink.Reconcile(ctx, occurrences, policy)
	if err != nil {
		return stats, fmt.Errorf("reconcile calendar: %w", err)
	}

	s.logger.Info("Schedule synced",
		zap.Int64("user_id", userID),
		zap.String("schedule", schedule.Name),
		zap.Int("rules", len(rules)),
		zap.Int("events_written", stats.Written),
		zap.Int("events_swept", stats.Swept),
	)

	return stats, nil
}

// Materialized returns the dated occurrences of the user's active schedule
// without touching the sink. Used by exports and reminders.
func (s *SyncService) Materialized(ctx context.Context, userID int64) ([]timetable.Occurrence, error) {
	_, rules, err := s.timetables.ActiveRules(ctx, userID)
	if err != nil {
		return nil, err
	}
	return timetable.Materialize(rules, s.timetables.Periods(), s.timetables.SemesterStart()), nil
}
