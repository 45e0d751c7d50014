package render

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedkit/timetable-bot/internal/timetable"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderWeekProducesPNG(t *testing.T) {
	r := NewRenderer(timetable.DefaultPeriods(), timetable.MondayFirst, 8, 21, "")

	blocks := []timetable.DisplayBlock{
		{Name: "Algorithms", TeacherName: "Dr. Hoare", Location: "A-101", WeekdayOrdinal: 1, StartSlot: 1, SlotSpan: 2, ColorTag: 0},
		{Name: "Physics", WeekdayOrdinal: 3, StartSlot: 5, SlotSpan: 2, ColorTag: 1},
	}

	data, err := r.RenderWeek(blocks, "Week 1", time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Greater(t, len(data), len(pngMagic))
	assert.Equal(t, pngMagic, data[:len(pngMagic)])
}

func TestRenderWeekSkipsUnprojectableBlocks(t *testing.T) {
	r := NewRenderer(timetable.DefaultPeriods(), timetable.MondayFirst, 8, 21, "")

	blocks := []timetable.DisplayBlock{
		{Name: "Ghost", WeekdayOrdinal: 2, StartSlot: 99, SlotSpan: 1, ColorTag: 2},
	}

	data, err := r.RenderWeek(blocks, "Week 1", time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderWeekEmptyVisibleWindow(t *testing.T) {
	r := NewRenderer(timetable.DefaultPeriods(), timetable.MondayFirst, 12, 12, "")

	_, err := r.RenderWeek(nil, "Week 1", time.Now())
	assert.Error(t, err)
}

func TestRenderWeekConcurrent(t *testing.T) {
	r := NewRenderer(timetable.DefaultPeriods(), timetable.MondayFirst, 8, 21, "")
	blocks := []timetable.DisplayBlock{
		{Name: "Algorithms", WeekdayOrdinal: 1, StartSlot: 1, SlotSpan: 2, ColorTag: 0},
	}

	// Handlers render in parallel; the renderer must be safe to share.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := r.RenderWeek(blocks, "Week 1", time.Now())
			assert.NoError(t, err)
			assert.NotEmpty(t, data)
		}()
	}
	wg.Wait()
}

func TestRenderWeekMissingFontFallsBack(t *testing.T) {
	r := NewRenderer(timetable.DefaultPeriods(), timetable.MondayFirst, 8, 21, "/nonexistent/font.ttf")

	data, err := r.RenderWeek(nil, "Week 1", time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
