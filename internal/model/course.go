package model

import (
	"time"

	"github.com/google/uuid"
)

// CourseRule is one recurring commitment: a course that meets on a single
// weekday, during an explicit set of academic weeks, occupying a contiguous
// range of period slots. Rules are treated as immutable values; edits replace
// the whole row.
type CourseRule struct {
	ID          int64     `json:"id"`
	ScheduleID  uuid.UUID `json:"schedule_id"`
	Name        string    `json:"name"`
	TeacherName string    `json:"teacher_name"`
	Location    string    `json:"location"`

	// WeekdayOrdinal is Monday-based: 1 = Monday ... 7 = Sunday.
	WeekdayOrdinal int `json:"weekday_ordinal"`

	// StartSlot is the first occupied period slot (1-based), SlotSpan the
	// number of consecutive slots. StartSlot+SlotSpan-1 must exist in the
	// period table.
	StartSlot int `json:"start_slot"`
	SlotSpan  int `json:"slot_span"`

	// ActiveWeeks holds the 1-based semester week numbers the course meets in.
	ActiveWeeks []int `json:"active_weeks"`

	// ColorTag is the palette index assigned by the merger. Zero until a merge
	// pass has run; not persisted as authoritative data.
	ColorTag int `json:"color_tag"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EndSlot returns the last occupied slot index.
func (c *CourseRule) EndSlot() int {
	return c.StartSlot + c.SlotSpan - 1
}

// MeetsInWeek reports whether the rule is active in the given semester week.
func (c *CourseRule) MeetsInWeek(week int) bool {
	for _, w := range c.ActiveWeeks {
		if w == week {
			return true
		}
	}
	return false
}
