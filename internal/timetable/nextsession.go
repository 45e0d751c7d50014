package timetable

import (
	"time"

	"github.com/schedkit/timetable-bot/internal/model"
)

// DefaultSearchHorizonDays bounds the forward search for the next session.
// Active week sets can be sparse, so the horizon must stay finite; two weeks
// covers every gap a weekly pattern can produce inside one active stretch.
const DefaultSearchHorizonDays = 14

// NextSession is the single soonest future occurrence among a candidate rule
// set, as of a given instant.
type NextSession struct {
	Rule  *model.CourseRule
	Start time.Time
	End   time.Time
}

// FindNext searches forward from now across a bounded rolling window of
// calendar days and returns the soonest session strictly after now. An
// in-progress session is never "next": a session starting exactly at now is
// excluded. Reports false when nothing occurs inside the horizon; callers
// then suppress any next-session display rather than showing stale data.
func FindNext(rules []model.CourseRule, now time.Time, periods *PeriodTable, semesterStart time.Time, horizonDays int) (NextSession, bool) {
	if horizonDays < 0 {
		horizonDays = DefaultSearchHorizonDays
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var best NextSession
	found := false

	for dayOffset := 0; dayOffset <= horizonDays; dayOffset++ {
		date := startOfDay.AddDate(0, 0, dayOffset)

		week := WeekNumberOf(date, semesterStart)
		if week < 1 {
			continue
		}
		ordinal := OrdinalFromTime(date.Weekday())

		for i := range rules {
			rule := &rules[i]
			if rule.WeekdayOrdinal != ordinal || !rule.MeetsInWeek(week) {
				continue
			}

			duration, ok := periods.DurationMinutes(rule.StartSlot, rule.EndSlot())
			if !ok {
				continue
			}
			slot, _ := periods.Lookup(rule.StartSlot)

			start := time.Date(date.Year(), date.Month(), date.Day(),
				slot.StartMinutes/60, slot.StartMinutes%60, 0, 0, date.Location())
			if !start.After(now) {
				continue
			}

			// Strictly-before comparison keeps the first candidate in
			// day-then-rule order on identical start times.
			if !found || start.Before(best.Start) {
				best = NextSession{
					Rule:  rule,
					Start: start,
					End:   start.Add(time.Duration(duration) * time.Minute),
				}
				found = true
			}
		}

		// Every candidate on a later day starts after every candidate found
		// today, so the scan can stop at the first day that produced one.
		if found {
			break
		}
	}

	return best, found
}
