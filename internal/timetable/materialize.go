package timetable

import (
	"sort"
	"time"

	"github.com/schedkit/timetable-bot/internal/model"
)

// OwnershipTag marks every calendar event this system creates. A later sweep
// removes exactly the events carrying the tag, leaving the user's own entries
// untouched.
const OwnershipTag = "https://schedkit.dev/timetable-bot/event"

// NotePrefix is prepended to the human-readable note of every created event.
const NotePrefix = "[timetable-bot] "

// Occurrence is one concrete dated instance of a course rule, produced only
// when materializing against a semester start date and handed to an external
// calendar sink. Never persisted by the core.
type Occurrence struct {
	Rule       *model.CourseRule
	WeekNumber int
	Start      time.Time
	End        time.Time
}

// WeekAnchor returns the Monday 00:00 of the calendar week containing
// semesterStart, in semesterStart's location. All week numbering is relative
// to this anchor.
func WeekAnchor(semesterStart time.Time) time.Time {
	day := time.Date(semesterStart.Year(), semesterStart.Month(), semesterStart.Day(), 0, 0, 0, 0, semesterStart.Location())
	offset := OrdinalFromTime(day.Weekday()) - 1
	return day.AddDate(0, 0, -offset)
}

// WeekNumberOf returns the 1-based semester week the given date falls in.
// Dates before the anchor week yield values below 1.
func WeekNumberOf(date, semesterStart time.Time) int {
	days := calendarDays(WeekAnchor(semesterStart), date)
	if days < 0 {
		// Integer division truncates toward zero; force floor semantics so
		// every pre-anchor day lands below week 1.
		return (days-6)/7 + 1
	}
	return days/7 + 1
}

// calendarDays counts whole calendar days from one date to another. Both are
// re-anchored to UTC midnights first: subtracting local midnights directly
// would come up an hour short across a DST transition and shift every later
// week boundary.
func calendarDays(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// Materialize expands recurring rules into dated occurrences for every active
// week of the semester. Output order is stable: rule order, then week number
// ascending, so a caller writing batches to an external sink gets
// reproducible diffs across runs. A rule/week pair whose period lookup fails
// is skipped, never aborting the batch.
func Materialize(rules []model.CourseRule, periods *PeriodTable, semesterStart time.Time) []Occurrence {
	anchor := WeekAnchor(semesterStart)
	out := make([]Occurrence, 0, len(rules))

	for i := range rules {
		rule := &rules[i]
		if rule.WeekdayOrdinal < 1 || rule.WeekdayOrdinal > 7 {
			continue
		}

		duration, ok := periods.DurationMinutes(rule.StartSlot, rule.EndSlot())
		if !ok {
			continue
		}
		startSlot, _ := periods.Lookup(rule.StartSlot)

		for _, week := range sortedWeeks(rule.ActiveWeeks) {
			dayOffset := (week-1)*7 + rule.WeekdayOrdinal - 1
			date := anchor.AddDate(0, 0, dayOffset)

			start := time.Date(date.Year(), date.Month(), date.Day(),
				startSlot.StartMinutes/60, startSlot.StartMinutes%60, 0, 0, date.Location())
			end := start.Add(time.Duration(duration) * time.Minute)

			out = append(out, Occurrence{
				Rule:       rule,
				WeekNumber: week,
				Start:      start,
				End:        end,
			})
		}
	}

	return out
}

// sortedWeeks returns the valid week numbers ascending, without duplicates.
func sortedWeeks(weeks []int) []int {
	out := make([]int, 0, len(weeks))
	seen := make(map[int]bool, len(weeks))
	for _, w := range weeks {
		if w < 1 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	sort.Ints(out)
	return out
}
