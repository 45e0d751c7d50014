package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrdinalFromTime(t *testing.T) {
	assert.Equal(t, 1, OrdinalFromTime(time.Monday))
	assert.Equal(t, 2, OrdinalFromTime(time.Tuesday))
	assert.Equal(t, 6, OrdinalFromTime(time.Saturday))
	assert.Equal(t, 7, OrdinalFromTime(time.Sunday))
}

func TestOrdinalFromCalendar(t *testing.T) {
	// Raw calendar numbering: day 1 is Sunday.
	assert.Equal(t, 7, OrdinalFromCalendar(1))
	assert.Equal(t, 1, OrdinalFromCalendar(2))
	assert.Equal(t, 6, OrdinalFromCalendar(7))
}

func TestColumnIndexLayouts(t *testing.T) {
	tests := []struct {
		convention WeekdayConvention
		// columns indexed by ordinal 1..7 (Monday..Sunday)
		columns [7]int
	}{
		{MondayFirst, [7]int{0, 1, 2, 3, 4, 5, 6}},
		{SundayFirst, [7]int{1, 2, 3, 4, 5, 6, 0}},
		{SaturdayFirst, [7]int{2, 3, 4, 5, 6, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.convention.String(), func(t *testing.T) {
			for ordinal := 1; ordinal <= 7; ordinal++ {
				assert.Equal(t, tt.columns[ordinal-1], tt.convention.ColumnIndex(ordinal),
					"ordinal %d", ordinal)
			}
		})
	}
}

func TestColumnIndexIsBijective(t *testing.T) {
	for _, convention := range []WeekdayConvention{MondayFirst, SundayFirst, SaturdayFirst} {
		seen := make(map[int]bool)
		for ordinal := 1; ordinal <= 7; ordinal++ {
			col := convention.ColumnIndex(ordinal)
			assert.GreaterOrEqual(t, col, 0)
			assert.LessOrEqual(t, col, 6)
			assert.False(t, seen[col], "%s maps two ordinals to column %d", convention, col)
			seen[col] = true
		}
	}
}

func TestParseWeekdayConvention(t *testing.T) {
	assert.Equal(t, MondayFirst, ParseWeekdayConvention("monday"))
	assert.Equal(t, SundayFirst, ParseWeekdayConvention("sunday"))
	assert.Equal(t, SaturdayFirst, ParseWeekdayConvention("saturday"))
	assert.Equal(t, MondayFirst, ParseWeekdayConvention(""))
	assert.Equal(t, MondayFirst, ParseWeekdayConvention("banana"))
}
