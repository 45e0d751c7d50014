package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/schedkit/timetable-bot/internal/timetable"
)

func testBlocks() []timetable.DisplayBlock {
	return []timetable.DisplayBlock{
		{Name: "Algorithms", TeacherName: "Dr. Hoare", Location: "A-101", WeekdayOrdinal: 2, StartSlot: 3, SlotSpan: 2, ColorTag: 0},
		{Name: "Physics", WeekdayOrdinal: 1, StartSlot: 1, SlotSpan: 1, ColorTag: 1},
	}
}

func TestExportWeekLayout(t *testing.T) {
	e := NewExcelExporter(timetable.DefaultPeriods(), timetable.MondayFirst, zap.NewNop())

	buf, filename, err := e.ExportWeek(testBlocks(), "Week 3")
	require.NoError(t, err)
	assert.Equal(t, "timetable.xlsx", filename)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Week 3", title)

	// Monday is the first day column under MondayFirst.
	monday, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Monday", monday)

	// Physics: Monday, slot 1, first data row.
	physics, err := f.GetCellValue(sheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Physics", physics)

	// Algorithms: Tuesday column, slot 3 row, merged down to slot 4.
	algo, err := f.GetCellValue(sheetName, "C5")
	require.NoError(t, err)
	assert.Contains(t, algo, "Algorithms")
	assert.Contains(t, algo, "Dr. Hoare")

	merged, err := f.GetMergeCells(sheetName)
	require.NoError(t, err)
	var found bool
	for _, m := range merged {
		if m.GetStartAxis() == "C5" && m.GetEndAxis() == "C6" {
			found = true
		}
	}
	assert.True(t, found, "two-slot class should span two rows")
}

func TestExportWeekPeriodColumn(t *testing.T) {
	e := NewExcelExporter(timetable.DefaultPeriods(), timetable.MondayFirst, zap.NewNop())

	buf, _, err := e.ExportWeek(testBlocks(), "Week 1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	firstPeriod, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "1  08:00-08:40", firstPeriod)
}

func TestExportWeekSundayFirstColumns(t *testing.T) {
	e := NewExcelExporter(timetable.DefaultPeriods(), timetable.SundayFirst, zap.NewNop())

	buf, _, err := e.ExportWeek(testBlocks(), "Week 1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	sunday, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Sunday", sunday)

	// Monday shifts one column right, so Physics lands in C3.
	physics, err := f.GetCellValue(sheetName, "C3")
	require.NoError(t, err)
	assert.Equal(t, "Physics", physics)
}

func TestExportWeekEmpty(t *testing.T) {
	e := NewExcelExporter(timetable.DefaultPeriods(), timetable.MondayFirst, zap.NewNop())

	_, _, err := e.ExportWeek(nil, "Week 1")
	assert.ErrorIs(t, err, ErrExportNoBlocks)
}
