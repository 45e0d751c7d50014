package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/schedkit/timetable-bot/internal/model"
	"github.com/schedkit/timetable-bot/internal/repository"
	"github.com/schedkit/timetable-bot/internal/timetable"
)

// ErrNoActiveSchedule is returned when the user has no schedule marked active.
var ErrNoActiveSchedule = fmt.Errorf("no active schedule")

// WeekView is a fully prepared weekly layout: merged display blocks plus the
// week number they were resolved for.
type WeekView struct {
	Schedule   *model.Schedule
	WeekNumber int
	Blocks     []timetable.DisplayBlock
}

// DayView is the subset of a week view that falls on one weekday.
type DayView struct {
	Schedule       *model.Schedule
	WeekNumber     int
	WeekdayOrdinal int
	Blocks         []timetable.DisplayBlock
}

type TimetableService struct {
	scheduleRepo  *repository.ScheduleRepository
	courseRepo    *repository.CourseRepository
	periods       *timetable.PeriodTable
	semesterStart time.Time
	horizonDays   int
	logger        *zap.Logger
}

func NewTimetableService(
	scheduleRepo *repository.ScheduleRepository,
	courseRepo *repository.CourseRepository,
	periods *timetable.PeriodTable,
	semesterStart time.Time,
	horizonDays int,
	logger *zap.Logger,
) *TimetableService {
	return &TimetableService{
		scheduleRepo:  scheduleRepo,
		courseRepo:    courseRepo,
		periods:       periods,
		semesterStart: semesterStart,
		horizonDays:   horizonDays,
		logger:        logger,
	}
}

// Periods exposes the slot table the service was configured with.
func (s *TimetableService) Periods() *timetable.PeriodTable {
	return s.periods
}

// SemesterStart exposes the configured first day of term.
func (s *TimetableService) SemesterStart() time.Time {
	return s.semesterStart
}

// ActiveRules loads the active schedule of the user together with all of its
// course rules.
func (s *TimetableService) ActiveRules(ctx context.Context, userID int64) (*model.Schedule, []model.CourseRule, error) {
	schedule, err := s.scheduleRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get active schedule: %w", err)
	}
	if schedule == nil {
		return nil, nil, ErrNoActiveSchedule
	}

	rows, err := s.courseRepo.GetBySchedule(ctx, schedule.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("get courses: %w", err)
	}

	rules := make([]model.CourseRule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, *row)
	}

	return schedule, rules, nil
}

// WeekViewAt builds the merged weekly layout for the week containing the given
// moment. Rules not meeting in that week are filtered out before merging.
func (s *TimetableService) WeekViewAt(ctx context.Context, userID int64, at time.Time) (*WeekView, error) {
	schedule, rules, err := s.ActiveRules(ctx, userID)
	if err != nil {
		return nil, err
	}

	week := timetable.WeekNumberOf(at, s.semesterStart)

	var visible []model.CourseRule
	for _, r := range rules {
		if r.MeetsInWeek(week) {
			visible = append(visible, r)
		}
	}

	alloc := timetable.NewColorAllocator()
	blocks := timetable.MergeBlocks(visible, alloc)

	s.logger.Info("Week view built",
		zap.Int64("user_id", userID),
		zap.Int("week", week),
		zap.Int("rules", len(visible)),
		zap.Int("blocks", len(blocks)),
	)

	return &WeekView{Schedule: schedule, WeekNumber: week, Blocks: blocks}, nil
}

// DayViewAt narrows the week view down to the weekday of the given moment.
func (s *TimetableService) DayViewAt(ctx context.Context, userID int64, at time.Time) (*DayView, error) {
	week, err := s.WeekViewAt(ctx, userID, at)
	if err != nil {
		return nil, err
	}

	ordinal := timetable.OrdinalFromTime(at.Weekday())
	var blocks []timetable.DisplayBlock
	for _, b := range week.Blocks {
		if b.WeekdayOrdinal == ordinal {
			blocks = append(blocks, b)
		}
	}

	return &DayView{
		Schedule:       week.Schedule,
		WeekNumber:     week.WeekNumber,
		WeekdayOrdinal: ordinal,
		Blocks:         blocks,
	}, nil
}

// NextSession finds the next upcoming class of the user within the configured
// search horizon. Returns (nil, nil) when nothing is scheduled in range.
func (s *TimetableService) NextSession(ctx context.Context, userID int64, now time.Time) (*timetable.NextSession, error) {
	_, rules, err := s.ActiveRules(ctx, userID)
	if err != nil {
		return nil, err
	}

	next, ok := timetable.FindNext(rules, now, s.periods, s.semesterStart, s.horizonDays)
	if !ok {
		return nil, nil
	}
	return &next, nil
}
