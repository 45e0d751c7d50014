package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/schedkit/timetable-bot/internal/ics"
	"github.com/schedkit/timetable-bot/internal/repository"
	"github.com/schedkit/timetable-bot/internal/service"
)

// Notifier delivers a reminder text to a user. Implemented by the bot
// controller.
type Notifier interface {
	Notify(ctx context.Context, userID int64, text string) error
}

// Scheduler runs the background jobs: a nightly calendar resync for every
// active schedule and a minute poll that sends class reminders.
type Scheduler struct {
	cron         *cron.Cron
	scheduleRepo *repository.ScheduleRepository
	timetables   *service.TimetableService
	syncs        *service.SyncService
	notifier     Notifier
	leadMinutes  int
	logger       *zap.Logger

	mu       sync.Mutex
	notified map[string]time.Time
}

func NewScheduler(
	scheduleRepo *repository.ScheduleRepository,
	timetables *service.TimetableService,
	syncs *service.SyncService,
	notifier Notifier,
	leadMinutes int,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		scheduleRepo: scheduleRepo,
		timetables:   timetables,
		syncs:        syncs,
		notifier:     notifier,
		leadMinutes:  leadMinutes,
		logger:       logger,
		notified:     make(map[string]time.Time),
	}
}

// Start registers the cron entries and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("0 3 * * *", func() { s.resyncAll(ctx) }); err != nil {
		return fmt.Errorf("register resync job: %w", err)
	}
	if _, err := s.cron.AddFunc("* * * * *", func() { s.pollReminders(ctx) }); err != nil {
		return fmt.Errorf("register reminder job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Background scheduler started", zap.Int("reminder_lead_minutes", s.leadMinutes))
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Background scheduler stopped")
}

// resyncAll rebuilds the calendar sink for every user with an active schedule.
// Per-user failures are logged and skipped so one bad schedule cannot block
// the rest.
func (s *Scheduler) resyncAll(ctx context.Context) {
	schedules, err := s.scheduleRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list active schedules", zap.Error(err))
		return
	}

	for _, schedule := range schedules {
		if _, err := s.syncs.Sync(ctx, schedule.UserID, ics.SweepTagged); err != nil {
			s.logger.Error("Nightly resync failed",
				zap.Int64("user_id", schedule.UserID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Nightly resync completed", zap.Int("schedules", len(schedules)))
}

// pollReminders checks every active schedule for a class starting within the
// lead window and notifies its owner once per occurrence.
func (s *Scheduler) pollReminders(ctx context.Context) {
	if s.notifier == nil || s.leadMinutes <= 0 {
		return
	}

	schedules, err := s.scheduleRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list active schedules", zap.Error(err))
		return
	}

	now := time.Now()
	lead := time.Duration(s.leadMinutes) * time.Minute

	for _, schedule := range schedules {
		next, err := s.timetables.NextSession(ctx, schedule.UserID, now)
		if err != nil || next == nil {
			continue
		}
		if next.Start.Sub(now) > lead {
			continue
		}

		key := fmt.Sprintf("%d:%s", schedule.UserID, next.Start.Format(time.RFC3339))
		if !s.markNotified(key, now) {
			continue
		}

		text := fmt.Sprintf("%s starts at %s", next.Rule.Name, next.Start.Format("15:04"))
		if next.Rule.Location != "" {
			text += " in " + next.Rule.Location
		}
		if err := s.notifier.Notify(ctx, schedule.UserID, text); err != nil {
			s.logger.Error("Failed to send reminder",
				zap.Int64("user_id", schedule.UserID),
				zap.Error(err),
			)
		}
	}
}

// markNotified records the reminder key and reports whether it was new. Keys
// older than a day are pruned on the way through.
func (s *Scheduler) markNotified(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, at := range s.notified {
		if now.Sub(at) > 24*time.Hour {
			delete(s.notified, k)
		}
	}

	if _, ok := s.notified[key]; ok {
		return false
	}
	s.notified[key] = now
	return true
}
