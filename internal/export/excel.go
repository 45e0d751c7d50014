package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/schedkit/timetable-bot/internal/timetable"
)

// ErrExportNoBlocks is returned when there is nothing to put on the sheet.
var ErrExportNoBlocks = errors.New("nothing to export")

var weekdayNames = map[int]string{
	1: "Monday", 2: "Tuesday", 3: "Wednesday", 4: "Thursday",
	5: "Friday", 6: "Saturday", 7: "Sunday",
}

const sheetName = "Timetable"

// ExcelExporter writes a weekly timetable as an .xlsx workbook: period rows
// down, weekday columns across, multi-slot classes as merged cells.
type ExcelExporter struct {
	periods    *timetable.PeriodTable
	convention timetable.WeekdayConvention
	logger     *zap.Logger
}

func NewExcelExporter(periods *timetable.PeriodTable, convention timetable.WeekdayConvention, logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{
		periods:    periods,
		convention: convention,
		logger:     logger,
	}
}

// ExportWeek renders the merged blocks of one week into a workbook and returns
// the buffer together with a suggested filename.
func (e *ExcelExporter) ExportWeek(blocks []timetable.DisplayBlock, title string) (*bytes.Buffer, string, error) {
	if len(blocks) == 0 {
		return nil, "", ErrExportNoBlocks
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	lastCol, _ := excelize.ColumnNumberToName(1 + 7)
	f.SetColWidth(sheetName, "B", lastCol, 22)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	// Title row spanning the whole table.
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", fmt.Sprintf("%s1", lastCol))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// Header row: period column plus one column per weekday in display order.
	f.SetCellValue(sheetName, "A2", "Period")
	for col := 0; col < 7; col++ {
		name, _ := excelize.CoordinatesToCellName(2+col, 2)
		f.SetCellValue(sheetName, name, weekdayNames[e.ordinalForColumn(col)])
	}
	f.SetCellStyle(sheetName, "A2", fmt.Sprintf("%s2", lastCol), headerStyle)

	// Period rows, one per slot.
	const firstDataRow = 3
	for slot := 1; slot <= e.periods.MaxIndex(); slot++ {
		p, ok := e.periods.Lookup(slot)
		if !ok {
			continue
		}
		name, _ := excelize.CoordinatesToCellName(1, firstDataRow+slot-1)
		f.SetCellValue(sheetName, name, fmt.Sprintf("%d  %s-%s",
			slot, formatMinutes(p.StartMinutes), formatMinutes(p.EndMinutes)))
	}

	// Blocks: a multi-slot class becomes one vertically merged cell.
	for _, b := range blocks {
		col := 2 + e.convention.ColumnIndex(b.WeekdayOrdinal)
		top, err := excelize.CoordinatesToCellName(col, firstDataRow+b.StartSlot-1)
		if err != nil {
			continue
		}
		bottom, err := excelize.CoordinatesToCellName(col, firstDataRow+b.EndSlot()-1)
		if err != nil {
			continue
		}

		text := b.Name
		if b.TeacherName != "" {
			text += "\n" + b.TeacherName
		}
		if b.Location != "" {
			text += "\n" + b.Location
		}

		f.SetCellValue(sheetName, top, text)
		if b.SlotSpan > 1 {
			f.MergeCell(sheetName, top, bottom)
		}
		f.SetCellStyle(sheetName, top, bottom, cellStyle)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}

	if e.logger != nil {
		e.logger.Info("Week exported", zap.String("title", title), zap.Int("blocks", len(blocks)))
	}

	return &buf, "timetable.xlsx", nil
}

func (e *ExcelExporter) ordinalForColumn(col int) int {
	for ordinal := 1; ordinal <= 7; ordinal++ {
		if e.convention.ColumnIndex(ordinal) == col {
			return ordinal
		}
	}
	return 1
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
