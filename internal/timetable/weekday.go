package timetable

import "time"

// Stored weekday ordinals are always Monday-based: 1 = Monday ... 7 = Sunday.
// WeekdayConvention only affects how a 7-day span is laid out left-to-right
// in a grid, never how rules are stored or matched.
type WeekdayConvention int

const (
	MondayFirst WeekdayConvention = iota
	SundayFirst
	SaturdayFirst
)

// ParseWeekdayConvention maps a config string to a convention, defaulting to
// MondayFirst for unknown values so a bad setting never breaks layout.
func ParseWeekdayConvention(s string) WeekdayConvention {
	switch s {
	case "sunday":
		return SundayFirst
	case "saturday":
		return SaturdayFirst
	default:
		return MondayFirst
	}
}

func (c WeekdayConvention) String() string {
	switch c {
	case SundayFirst:
		return "sunday"
	case SaturdayFirst:
		return "saturday"
	default:
		return "monday"
	}
}

// OrdinalFromTime converts a time.Weekday to the stored Monday-based ordinal.
func OrdinalFromTime(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// OrdinalFromCalendar converts a raw calendar-API weekday number, where day 1
// denotes Sunday, to the stored Monday-based ordinal.
func OrdinalFromCalendar(raw int) int {
	if raw == 1 {
		return 7
	}
	return raw - 1
}

// ColumnIndex maps a stored ordinal (1..7) to a grid column (0..6) under this
// convention. The mapping is a bijection on {1..7} for every convention.
func (c WeekdayConvention) ColumnIndex(ordinal int) int {
	switch c {
	case SundayFirst:
		// Sunday (7) leads the week.
		return ordinal % 7
	case SaturdayFirst:
		// Saturday (6) leads, Sunday (7) second.
		return (ordinal + 1) % 7
	default:
		return ordinal - 1
	}
}
