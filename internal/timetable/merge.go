package timetable

import (
	"sort"

	"github.com/schedkit/timetable-bot/internal/model"
)

// PaletteSize is the number of distinct block colors. Color tags are palette
// indexes in [0, PaletteSize); renderers decide the actual RGB values.
const PaletteSize = 10

// ColorAllocator assigns palette slots to course names round-robin: the first
// time a name is seen it claims the next slot (wrapping after PaletteSize),
// and every later block for the same name reuses it. The allocator is a plain
// value threaded through each merge call, so concurrent merges with separate
// allocators never race.
type ColorAllocator struct {
	byName map[string]int
	next   int
}

// NewColorAllocator returns an empty allocator.
func NewColorAllocator() *ColorAllocator {
	return &ColorAllocator{byName: make(map[string]int)}
}

// ColorFor returns the palette index for the given course name, claiming the
// next free slot on first sight.
func (a *ColorAllocator) ColorFor(name string) int {
	if tag, ok := a.byName[name]; ok {
		return tag
	}
	tag := a.next % PaletteSize
	a.byName[name] = tag
	a.next++
	return tag
}

// DisplayBlock is one merged rectangle on the week grid: one or more
// slot-contiguous entries of the same course identity collapsed together.
// Blocks are recomputed from the rule list on every read, never persisted.
type DisplayBlock struct {
	Name           string
	TeacherName    string
	Location       string
	WeekdayOrdinal int
	StartSlot      int
	SlotSpan       int
	ColorTag       int
	SourceRuleIDs  []int64
}

// EndSlot returns the last slot index covered by the block.
func (b DisplayBlock) EndSlot() int {
	return b.StartSlot + b.SlotSpan - 1
}

// identityKey groups entries that may merge: same course, same teacher, same
// room, same weekday. Co-occurrence is never enough; only slot contiguity
// within one identity merges.
type identityKey struct {
	name     string
	teacher  string
	location string
	weekday  int
}

// MergeBlocks collapses a flat list of course entries into minimal display
// blocks. Within one identity, entries sorted by start slot are compacted
// into maximal contiguous runs; exact duplicate starts are dropped keeping
// the first after the stable sort. Malformed input never errors: this is a
// read-time projection over externally-owned data.
func MergeBlocks(entries []model.CourseRule, alloc *ColorAllocator) []DisplayBlock {
	if alloc == nil {
		alloc = NewColorAllocator()
	}

	// Claim colors in input order so the assignment is stable for one pass
	// regardless of how entries group.
	for i := range entries {
		alloc.ColorFor(entries[i].Name)
	}

	groups := make(map[identityKey][]model.CourseRule)
	order := make([]identityKey, 0, len(entries))
	for _, e := range entries {
		key := identityKey{name: e.Name, teacher: e.TeacherName, location: e.Location, weekday: e.WeekdayOrdinal}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], e)
	}

	blocks := make([]DisplayBlock, 0, len(entries))
	for _, key := range order {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool { return group[i].StartSlot < group[j].StartSlot })

		var cur *DisplayBlock
		for i := range group {
			e := group[i]
			switch {
			case cur == nil:
			case e.StartSlot <= cur.EndSlot():
				// Duplicate or contained entry; keep the first one seen.
				continue
			case e.StartSlot == cur.EndSlot()+1:
				cur.SlotSpan += e.SlotSpan
				cur.SourceRuleIDs = append(cur.SourceRuleIDs, e.ID)
				continue
			default:
				blocks = append(blocks, *cur)
			}
			cur = &DisplayBlock{
				Name:           e.Name,
				TeacherName:    e.TeacherName,
				Location:       e.Location,
				WeekdayOrdinal: e.WeekdayOrdinal,
				StartSlot:      e.StartSlot,
				SlotSpan:       e.SlotSpan,
				ColorTag:       alloc.ColorFor(e.Name),
				SourceRuleIDs:  []int64{e.ID},
			}
		}
		if cur != nil {
			blocks = append(blocks, *cur)
		}
	}

	// Deterministic display order: weekday, then start slot, then name.
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].WeekdayOrdinal != blocks[j].WeekdayOrdinal {
			return blocks[i].WeekdayOrdinal < blocks[j].WeekdayOrdinal
		}
		if blocks[i].StartSlot != blocks[j].StartSlot {
			return blocks[i].StartSlot < blocks[j].StartSlot
		}
		return blocks[i].Name < blocks[j].Name
	})

	return blocks
}
