package timetable

import (
	"fmt"
	"sort"
)

// PeriodSlot maps one period index (1-based) to its wall-clock start and end,
// expressed as minutes of day. Slots never overlap and never mutate; a new
// table replaces the old one atomically.
type PeriodSlot struct {
	Index        int
	StartMinutes int
	EndMinutes   int
}

// PeriodTable is the slot-index-to-wall-clock lookup table for one academic
// day. Safe for concurrent reads.
type PeriodTable struct {
	slots    map[int]PeriodSlot
	maxIndex int
}

// NewPeriodTable validates the given slots and builds a table. It fails on a
// duplicate index, an inverted slot, or two slots whose time ranges overlap.
func NewPeriodTable(slots []PeriodSlot) (*PeriodTable, error) {
	byIndex := make(map[int]PeriodSlot, len(slots))
	maxIndex := 0

	for _, s := range slots {
		if s.Index < 1 {
			return nil, fmt.Errorf("period table: slot index %d is not positive", s.Index)
		}
		if s.StartMinutes >= s.EndMinutes {
			return nil, fmt.Errorf("period table: slot %d start %d is not before end %d", s.Index, s.StartMinutes, s.EndMinutes)
		}
		if _, ok := byIndex[s.Index]; ok {
			return nil, fmt.Errorf("period table: duplicate slot index %d", s.Index)
		}
		byIndex[s.Index] = s
		if s.Index > maxIndex {
			maxIndex = s.Index
		}
	}

	ordered := make([]PeriodSlot, 0, len(byIndex))
	for _, s := range byIndex {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if cur.StartMinutes < prev.EndMinutes {
			return nil, fmt.Errorf("period table: slot %d overlaps slot %d", cur.Index, prev.Index)
		}
	}

	return &PeriodTable{slots: byIndex, maxIndex: maxIndex}, nil
}

// DefaultPeriods returns the built-in 12-slot academic day: four morning
// periods, a lunch gap, four afternoon periods, a dinner gap and four
// evening periods, 40 minutes each.
func DefaultPeriods() *PeriodTable {
	slots := []PeriodSlot{
		{Index: 1, StartMinutes: 8*60 + 0, EndMinutes: 8*60 + 40},
		{Index: 2, StartMinutes: 8*60 + 50, EndMinutes: 9*60 + 30},
		{Index: 3, StartMinutes: 9*60 + 50, EndMinutes: 10*60 + 30},
		{Index: 4, StartMinutes: 10*60 + 40, EndMinutes: 11*60 + 20},
		{Index: 5, StartMinutes: 13*60 + 30, EndMinutes: 14*60 + 10},
		{Index: 6, StartMinutes: 14*60 + 20, EndMinutes: 15*60 + 0},
		{Index: 7, StartMinutes: 15*60 + 20, EndMinutes: 16*60 + 0},
		{Index: 8, StartMinutes: 16*60 + 10, EndMinutes: 16*60 + 50},
		{Index: 9, StartMinutes: 17*60 + 30, EndMinutes: 18*60 + 10},
		{Index: 10, StartMinutes: 18*60 + 20, EndMinutes: 19*60 + 0},
		{Index: 11, StartMinutes: 19*60 + 15, EndMinutes: 19*60 + 55},
		{Index: 12, StartMinutes: 20*60 + 5, EndMinutes: 20*60 + 45},
	}

	table, err := NewPeriodTable(slots)
	if err != nil {
		// The built-in table is a constant; a validation failure here is a
		// programming error, not runtime input.
		panic("timetable: default period table invalid: " + err.Error())
	}
	return table
}

// Lookup returns the slot for the given index.
func (t *PeriodTable) Lookup(index int) (PeriodSlot, bool) {
	s, ok := t.slots[index]
	return s, ok
}

// MaxIndex returns the highest slot index present in the table.
func (t *PeriodTable) MaxIndex() int {
	return t.maxIndex
}

// Len returns the number of slots in the table.
func (t *PeriodTable) Len() int {
	return len(t.slots)
}

// DurationMinutes returns the wall-clock span from the start of startSlot to
// the end of endSlot (inclusive). It fails if either index is absent.
func (t *PeriodTable) DurationMinutes(startSlot, endSlot int) (int, bool) {
	start, ok := t.slots[startSlot]
	if !ok {
		return 0, false
	}
	end, ok := t.slots[endSlot]
	if !ok {
		return 0, false
	}
	return end.EndMinutes - start.StartMinutes, true
}

// StartMinutesOr returns the slot's start minutes, or fallback when the index
// is absent. Layout code uses this to degrade gracefully instead of failing.
func (t *PeriodTable) StartMinutesOr(index, fallback int) int {
	if s, ok := t.slots[index]; ok {
		return s.StartMinutes
	}
	return fallback
}

// EndMinutesOr returns the slot's end minutes, or fallback when the index is
// absent.
func (t *PeriodTable) EndMinutesOr(index, fallback int) int {
	if s, ok := t.slots[index]; ok {
		return s.EndMinutes
	}
	return fallback
}
