package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedkit/timetable-bot/internal/model"
)

// semesterMonday is a known Monday used as the semester start in tests.
var semesterMonday = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func TestSemesterMondayReallyIsMonday(t *testing.T) {
	require.Equal(t, time.Monday, semesterMonday.Weekday())
}

func TestWeekAnchor(t *testing.T) {
	// Anchor of a Monday is the Monday itself.
	assert.Equal(t, semesterMonday, WeekAnchor(semesterMonday))

	// Any other day of that week anchors to the same Monday, time discarded.
	wednesday := semesterMonday.AddDate(0, 0, 2).Add(15 * time.Hour)
	assert.Equal(t, semesterMonday, WeekAnchor(wednesday))

	sunday := semesterMonday.AddDate(0, 0, 6)
	assert.Equal(t, semesterMonday, WeekAnchor(sunday))
}

func TestWeekNumberOf(t *testing.T) {
	assert.Equal(t, 1, WeekNumberOf(semesterMonday, semesterMonday))
	assert.Equal(t, 1, WeekNumberOf(semesterMonday.AddDate(0, 0, 6), semesterMonday))
	assert.Equal(t, 2, WeekNumberOf(semesterMonday.AddDate(0, 0, 7), semesterMonday))
	assert.Equal(t, 5, WeekNumberOf(semesterMonday.AddDate(0, 0, 30), semesterMonday))

	// Any day before the anchor week is below week 1.
	assert.Less(t, WeekNumberOf(semesterMonday.AddDate(0, 0, -1), semesterMonday), 1)
	assert.Less(t, WeekNumberOf(semesterMonday.AddDate(0, 0, -8), semesterMonday), 1)
}

func TestWeekNumberOfAcrossSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// US clocks jump forward on 2026-03-08, so the following Mondays sit 167,
	// 335, ... wall-clock hours past the anchor Monday. Week boundaries must
	// follow calendar dates regardless.
	anchor := time.Date(2026, time.March, 2, 0, 0, 0, 0, loc)
	require.Equal(t, time.Monday, anchor.Weekday())

	assert.Equal(t, 1, WeekNumberOf(anchor.AddDate(0, 0, 6), anchor))
	assert.Equal(t, 2, WeekNumberOf(anchor.AddDate(0, 0, 7), anchor))
	assert.Equal(t, 2, WeekNumberOf(anchor.AddDate(0, 0, 13), anchor))
	assert.Equal(t, 3, WeekNumberOf(anchor.AddDate(0, 0, 14), anchor))
}

func TestWeekNumberOfAcrossFallBack(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// US clocks fall back on 2026-11-01.
	anchor := time.Date(2026, time.October, 26, 0, 0, 0, 0, loc)
	require.Equal(t, time.Monday, anchor.Weekday())

	assert.Equal(t, 1, WeekNumberOf(anchor.AddDate(0, 0, 6), anchor))
	assert.Equal(t, 2, WeekNumberOf(anchor.AddDate(0, 0, 7), anchor))
	assert.Equal(t, 3, WeekNumberOf(anchor.AddDate(0, 0, 14), anchor))
}

func TestMaterializeCountAndSpacing(t *testing.T) {
	rule := model.CourseRule{
		ID:             1,
		Name:           "Linear Algebra",
		WeekdayOrdinal: 1,
		StartSlot:      1,
		SlotSpan:       2,
		ActiveWeeks:    []int{1, 3, 5},
	}

	occs := Materialize([]model.CourseRule{rule}, DefaultPeriods(), semesterMonday)
	require.Len(t, occs, 3)

	for i, occ := range occs {
		assert.Equal(t, []int{1, 3, 5}[i], occ.WeekNumber)
		if i > 0 {
			assert.Equal(t, 14*24*time.Hour, occ.Start.Sub(occs[i-1].Start))
		}
	}
}

func TestMaterializeEndToEnd(t *testing.T) {
	// Rule on weekday 2 (Tuesday), slots 3-4, weeks {1,2}: two occurrences,
	// the first on the Tuesday of week one at slot 3's start, lasting until
	// slot 4's end, the second exactly 7 days later.
	rule := model.CourseRule{
		ID:             7,
		Name:           "Algorithms",
		WeekdayOrdinal: 2,
		StartSlot:      3,
		SlotSpan:       2,
		ActiveWeeks:    []int{1, 2},
	}

	occs := Materialize([]model.CourseRule{rule}, DefaultPeriods(), semesterMonday)
	require.Len(t, occs, 2)

	wantStart := time.Date(2026, time.March, 3, 9, 50, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.March, 3, 11, 20, 0, 0, time.UTC)
	assert.Equal(t, wantStart, occs[0].Start)
	assert.Equal(t, wantEnd, occs[0].End)

	assert.Equal(t, wantStart.AddDate(0, 0, 7), occs[1].Start)
	assert.Equal(t, wantEnd.AddDate(0, 0, 7), occs[1].End)
}

func TestMaterializeMidWeekSemesterStart(t *testing.T) {
	// A semester starting Wednesday still anchors week 1 to that week's
	// Monday, so a Monday course in week 1 dates before the start itself.
	wednesday := semesterMonday.AddDate(0, 0, 2)
	rule := model.CourseRule{WeekdayOrdinal: 1, StartSlot: 1, SlotSpan: 1, ActiveWeeks: []int{1}}

	occs := Materialize([]model.CourseRule{rule}, DefaultPeriods(), wednesday)
	require.Len(t, occs, 1)
	assert.Equal(t, semesterMonday.Add(8*time.Hour), occs[0].Start)
}

func TestMaterializeSkipsBadRows(t *testing.T) {
	rules := []model.CourseRule{
		{ID: 1, Name: "ok", WeekdayOrdinal: 1, StartSlot: 1, SlotSpan: 1, ActiveWeeks: []int{1}},
		// Last occupied slot does not exist in the table.
		{ID: 2, Name: "overflow", WeekdayOrdinal: 1, StartSlot: 12, SlotSpan: 2, ActiveWeeks: []int{1}},
		// Weekday out of range.
		{ID: 3, Name: "badday", WeekdayOrdinal: 0, StartSlot: 1, SlotSpan: 1, ActiveWeeks: []int{1}},
	}

	occs := Materialize(rules, DefaultPeriods(), semesterMonday)
	require.Len(t, occs, 1)
	assert.Equal(t, int64(1), occs[0].Rule.ID)
}

func TestMaterializeIgnoresInvalidWeeks(t *testing.T) {
	rule := model.CourseRule{WeekdayOrdinal: 1, StartSlot: 1, SlotSpan: 1, ActiveWeeks: []int{0, -3, 2, 2, 1}}

	occs := Materialize([]model.CourseRule{rule}, DefaultPeriods(), semesterMonday)
	require.Len(t, occs, 2)
	assert.Equal(t, 1, occs[0].WeekNumber)
	assert.Equal(t, 2, occs[1].WeekNumber)
}

func TestMaterializeStableOrder(t *testing.T) {
	rules := []model.CourseRule{
		{ID: 2, Name: "b", WeekdayOrdinal: 3, StartSlot: 5, SlotSpan: 1, ActiveWeeks: []int{2, 1}},
		{ID: 1, Name: "a", WeekdayOrdinal: 1, StartSlot: 1, SlotSpan: 1, ActiveWeeks: []int{1}},
	}

	occs := Materialize(rules, DefaultPeriods(), semesterMonday)
	require.Len(t, occs, 3)
	// Rule order first, then week ascending within a rule.
	assert.Equal(t, int64(2), occs[0].Rule.ID)
	assert.Equal(t, 1, occs[0].WeekNumber)
	assert.Equal(t, int64(2), occs[1].Rule.ID)
	assert.Equal(t, 2, occs[1].WeekNumber)
	assert.Equal(t, int64(1), occs[2].Rule.ID)
}
