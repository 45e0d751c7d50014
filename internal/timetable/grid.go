package timetable

import "math"

// minBlockHeight keeps degenerate or zero-duration blocks visible: a block is
// never projected shorter than this many units.
const minBlockHeight = 8.0

// GridConfig is the caller-supplied layout for one projection pass. Offsets
// and heights come out in the same unit HourHeight is supplied in; the core
// never touches pixels directly.
type GridConfig struct {
	Periods          *PeriodTable
	Convention       WeekdayConvention
	VisibleStartHour int
	VisibleEndHour   int
	DayColumnWidth   float64
	HourHeight       float64
}

// BlockPosition is the normalized grid placement of one display block.
type BlockPosition struct {
	Column  int
	X       float64
	OffsetY float64
	Height  float64
}

// Project converts a display block into its position on the week grid. It
// reports false when either slot bound is missing from the period table or
// any coordinate comes out non-finite; callers skip rendering instead of
// crashing. Pure and O(1), safe to call on every redraw.
func Project(block DisplayBlock, cfg GridConfig) (BlockPosition, bool) {
	if cfg.Periods == nil {
		return BlockPosition{}, false
	}

	start, ok := cfg.Periods.Lookup(block.StartSlot)
	if !ok {
		return BlockPosition{}, false
	}
	duration, ok := cfg.Periods.DurationMinutes(block.StartSlot, block.EndSlot())
	if !ok {
		return BlockPosition{}, false
	}

	column := cfg.Convention.ColumnIndex(block.WeekdayOrdinal)

	offsetY := float64(start.StartMinutes-cfg.VisibleStartHour*60) * cfg.HourHeight / 60
	height := float64(duration) * cfg.HourHeight / 60
	if height < minBlockHeight {
		height = minBlockHeight
	}
	x := float64(column) * cfg.DayColumnWidth

	for _, v := range [...]float64{x, offsetY, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return BlockPosition{}, false
		}
	}

	return BlockPosition{Column: column, X: x, OffsetY: offsetY, Height: height}, true
}
