package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedkit/timetable-bot/internal/model"
)

func nextRule(id int64, name string, weekday, startSlot, span int, weeks ...int) model.CourseRule {
	return model.CourseRule{
		ID:             id,
		Name:           name,
		WeekdayOrdinal: weekday,
		StartSlot:      startSlot,
		SlotSpan:       span,
		ActiveWeeks:    weeks,
	}
}

func TestFindNextSoonestAcrossDays(t *testing.T) {
	rules := []model.CourseRule{
		// Thursday slot 1.
		nextRule(1, "Physics", 4, 1, 1, 1),
		// Tuesday slots 3-4.
		nextRule(2, "Algorithms", 2, 3, 2, 1),
	}

	// Monday morning of week 1.
	now := semesterMonday.Add(7 * time.Hour)

	next, ok := FindNext(rules, now, DefaultPeriods(), semesterMonday, DefaultSearchHorizonDays)
	require.True(t, ok)
	assert.Equal(t, "Algorithms", next.Rule.Name)
	assert.Equal(t, time.Date(2026, time.March, 3, 9, 50, 0, 0, time.UTC), next.Start)
	assert.Equal(t, time.Date(2026, time.March, 3, 11, 20, 0, 0, time.UTC), next.End)
}

func TestFindNextStrictlyAfterNow(t *testing.T) {
	rules := []model.CourseRule{
		nextRule(1, "Algorithms", 2, 3, 2, 1, 2),
	}

	// Exactly at the week-1 session's start: that session is in progress and
	// never "next"; the resolver returns the week-2 one.
	now := time.Date(2026, time.March, 3, 9, 50, 0, 0, time.UTC)

	next, ok := FindNext(rules, now, DefaultPeriods(), semesterMonday, DefaultSearchHorizonDays)
	require.True(t, ok)
	assert.Equal(t, 2, WeekNumberOf(next.Start, semesterMonday))
	assert.Equal(t, now.AddDate(0, 0, 7), next.Start)
}

func TestFindNextZeroHorizonOnlyToday(t *testing.T) {
	rules := []model.CourseRule{
		// Tomorrow (Tuesday).
		nextRule(1, "Algorithms", 2, 1, 1, 1),
		// Today (Monday), slot 1 at 08:00 and slot 5 at 13:30.
		nextRule(2, "Calculus", 1, 1, 1, 1),
		nextRule(3, "Calculus", 1, 5, 1, 1),
	}

	noon := semesterMonday.Add(12 * time.Hour)

	next, ok := FindNext(rules, noon, DefaultPeriods(), semesterMonday, 0)
	require.True(t, ok)
	assert.Equal(t, int64(3), next.Rule.ID)

	// After the last session of the day, a zero horizon finds nothing; the
	// Tuesday session is out of range.
	evening := semesterMonday.Add(22 * time.Hour)
	_, ok = FindNext(rules, evening, DefaultPeriods(), semesterMonday, 0)
	assert.False(t, ok)
}

func TestFindNextHonorsWeekMembership(t *testing.T) {
	rules := []model.CourseRule{
		// Only meets in week 2.
		nextRule(1, "Seminar", 1, 1, 1, 2),
	}

	now := semesterMonday.Add(7 * time.Hour)

	next, ok := FindNext(rules, now, DefaultPeriods(), semesterMonday, DefaultSearchHorizonDays)
	require.True(t, ok)
	assert.Equal(t, semesterMonday.AddDate(0, 0, 7).Add(8*time.Hour), next.Start)
}

func TestFindNextBeforeSemesterStart(t *testing.T) {
	rules := []model.CourseRule{
		nextRule(1, "Algorithms", 1, 1, 1, 1),
	}

	// Ten days before the semester: pre-anchor days are skipped, and the
	// week-1 Monday session is found inside the horizon.
	now := semesterMonday.AddDate(0, 0, -10)

	next, ok := FindNext(rules, now, DefaultPeriods(), semesterMonday, DefaultSearchHorizonDays)
	require.True(t, ok)
	assert.Equal(t, semesterMonday.Add(8*time.Hour), next.Start)
}

func TestFindNextNothingInHorizon(t *testing.T) {
	rules := []model.CourseRule{
		// Meets only in a far-away week.
		nextRule(1, "Elective", 1, 1, 1, 10),
	}

	now := semesterMonday.Add(7 * time.Hour)

	_, ok := FindNext(rules, now, DefaultPeriods(), semesterMonday, DefaultSearchHorizonDays)
	assert.False(t, ok)
}

func TestFindNextTieBreakIsFirstInRuleOrder(t *testing.T) {
	rules := []model.CourseRule{
		nextRule(1, "First", 2, 3, 1, 1),
		nextRule(2, "Second", 2, 3, 1, 1),
	}

	now := semesterMonday.Add(7 * time.Hour)

	next, ok := FindNext(rules, now, DefaultPeriods(), semesterMonday, DefaultSearchHorizonDays)
	require.True(t, ok)
	assert.Equal(t, int64(1), next.Rule.ID)
}

func TestFindNextSkipsRulesWithMissingSlots(t *testing.T) {
	rules := []model.CourseRule{
		nextRule(1, "Broken", 2, 40, 1, 1),
		nextRule(2, "Valid", 2, 3, 1, 1),
	}

	now := semesterMonday.Add(7 * time.Hour)

	next, ok := FindNext(rules, now, DefaultPeriods(), semesterMonday, DefaultSearchHorizonDays)
	require.True(t, ok)
	assert.Equal(t, int64(2), next.Rule.ID)
}

func TestFindNextAcrossSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Semester starts the Monday before the US spring-forward transition, so
	// the week-2 Monday is only 167 wall-clock hours in. The class must still
	// be found as a week-2 session.
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, loc)
	rules := []model.CourseRule{
		nextRule(1, "Algorithms", 1, 3, 2, 2),
	}

	now := start.AddDate(0, 0, 7).Add(7 * time.Hour)

	next, ok := FindNext(rules, now, DefaultPeriods(), start, DefaultSearchHorizonDays)
	require.True(t, ok)
	assert.Equal(t, 2, WeekNumberOf(next.Start, start))
	assert.Equal(t, start.AddDate(0, 0, 7).Add(9*time.Hour+50*time.Minute), next.Start)
}

func TestFindNextEmptyRules(t *testing.T) {
	_, ok := FindNext(nil, semesterMonday, DefaultPeriods(), semesterMonday, DefaultSearchHorizonDays)
	assert.False(t, ok)
}
