package render

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"

	"github.com/schedkit/timetable-bot/internal/timetable"
)

const (
	imageWidth      = 1400
	imageHeight     = 900
	headerHeight    = 100
	leftLabelsWidth = 80
	dayPaddingX     = 8
	blockRadius     = 6.0
	shadowOffset    = 3.0
	totalDays       = 7
)

const (
	titleFontSize     = 25.0
	dayFontSize       = 27.0
	hourLabelFontSize = 18.0
	blockNameFontSize = 17.0
	blockMetaFontSize = 13.0
)

var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 60}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{225, 226, 228, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}
	blockTextColor   = color.RGBA{20, 24, 28, 230}
	blockShadowColor = color.RGBA{0, 0, 0, 20}
)

// blockPalette maps ColorTag 0..9 to a fill color. Must stay as large as the
// allocator's palette so a tag never indexes out of range.
var blockPalette = [timetable.PaletteSize]color.RGBA{
	{133, 193, 85, 220},
	{100, 181, 246, 220},
	{255, 183, 77, 220},
	{186, 104, 200, 220},
	{77, 208, 225, 220},
	{255, 138, 128, 220},
	{174, 213, 129, 220},
	{144, 164, 174, 220},
	{255, 213, 79, 220},
	{240, 98, 146, 220},
}

var weekdayShort = map[int]string{
	1: "Mon", 2: "Tue", 3: "Wed", 4: "Thu", 5: "Fri", 6: "Sat", 7: "Sun",
}

// Renderer draws a weekly timetable as a PNG image.
type Renderer struct {
	periods          *timetable.PeriodTable
	convention       timetable.WeekdayConvention
	visibleStartHour int
	visibleEndHour   int

	font *opentype.Font
}

// NewRenderer parses the font file once up front; handlers render concurrently
// and must not mutate shared state afterwards. An unreadable or unparseable
// font leaves the built-in bitmap face in effect.
func NewRenderer(periods *timetable.PeriodTable, convention timetable.WeekdayConvention, visibleStartHour, visibleEndHour int, fontPath string) *Renderer {
	return &Renderer{
		periods:          periods,
		convention:       convention,
		visibleStartHour: visibleStartHour,
		visibleEndHour:   visibleEndHour,
		font:             loadFont(fontPath),
	}
}

func loadFont(path string) *opentype.Font {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil
	}
	return parsed
}

// RenderWeek draws the merged display blocks of one week onto the grid and
// returns the encoded PNG. Blocks that cannot be projected are skipped.
func (r *Renderer) RenderWeek(blocks []timetable.DisplayBlock, title string, now time.Time) ([]byte, error) {
	visibleHours := r.visibleEndHour - r.visibleStartHour
	if visibleHours <= 0 {
		return nil, fmt.Errorf("render week: empty visible window")
	}

	dayWidth := float64(imageWidth-leftLabelsWidth) / totalDays
	gridHeight := float64(imageHeight - headerHeight)
	hourHeight := gridHeight / float64(visibleHours)

	cfg := timetable.GridConfig{
		Periods:          r.periods,
		Convention:       r.convention,
		VisibleStartHour: r.visibleStartHour,
		VisibleEndHour:   r.visibleEndHour,
		DayColumnWidth:   dayWidth,
		HourHeight:       hourHeight,
	}

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()

	todayColumn := r.convention.ColumnIndex(timetable.OrdinalFromTime(now.Weekday()))

	r.drawTitle(dc, title)
	r.drawDayColumns(dc, dayWidth, gridHeight, todayColumn)
	r.drawHourLabels(dc, hourHeight, visibleHours)
	r.drawHourLines(dc, hourHeight, visibleHours)

	for _, block := range blocks {
		pos, ok := timetable.Project(block, cfg)
		if !ok {
			continue
		}
		r.drawBlock(dc, block, pos, dayWidth)
	}

	r.drawCurrentTimeLine(dc, now, hourHeight)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawTitle(dc *gg.Context, title string) {
	r.setFont(dc, titleFontSize)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, imageWidth/2, float64(headerHeight)/3, 0.5, 0.5)
}

func (r *Renderer) drawDayColumns(dc *gg.Context, dayWidth, gridHeight float64, todayColumn int) {
	for col := 0; col < totalDays; col++ {
		x := float64(leftLabelsWidth) + float64(col)*dayWidth
		y := float64(headerHeight)

		if col%2 == 0 {
			dc.SetColor(evenDayColor)
		} else {
			dc.SetColor(oddDayColor)
		}
		dc.DrawRectangle(x, y, dayWidth, gridHeight)
		dc.Fill()

		if col == todayColumn {
			dc.SetColor(todayBgColor)
			dc.DrawRectangle(x, y, dayWidth, gridHeight)
			dc.Fill()
		}

		r.setFont(dc, dayFontSize)
		dc.SetColor(textColor)
		label := weekdayShort[r.ordinalForColumn(col)]
		dc.DrawStringAnchored(label, x+dayWidth/2, y-dayFontSize/2-6, 0.5, 0.5)
	}
}

// ordinalForColumn inverts the convention's column mapping.
func (r *Renderer) ordinalForColumn(col int) int {
	for ordinal := 1; ordinal <= totalDays; ordinal++ {
		if r.convention.ColumnIndex(ordinal) == col {
			return ordinal
		}
	}
	return 1
}

func (r *Renderer) drawHourLabels(dc *gg.Context, hourHeight float64, visibleHours int) {
	r.setFont(dc, hourLabelFontSize)
	dc.SetColor(hourLabelColor)

	for h := 0; h <= visibleHours; h++ {
		y := float64(headerHeight) + float64(h)*hourHeight
		label := fmt.Sprintf("%02d:00", r.visibleStartHour+h)
		dc.DrawStringAnchored(label, float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func (r *Renderer) drawHourLines(dc *gg.Context, hourHeight float64, visibleHours int) {
	dc.SetColor(hourLineColor)
	dc.SetLineWidth(0.5)
	for h := 0; h <= visibleHours; h++ {
		y := float64(headerHeight) + float64(h)*hourHeight
		dc.DrawLine(leftLabelsWidth, y, imageWidth, y)
		dc.Stroke()
	}
}

func (r *Renderer) drawBlock(dc *gg.Context, block timetable.DisplayBlock, pos timetable.BlockPosition, dayWidth float64) {
	x := float64(leftLabelsWidth) + pos.X + dayPaddingX
	y := float64(headerHeight) + pos.OffsetY
	w := dayWidth - 2*dayPaddingX
	h := pos.Height

	dc.SetColor(blockShadowColor)
	dc.DrawRoundedRectangle(x+shadowOffset, y+shadowOffset, w, h, blockRadius)
	dc.Fill()

	fill := blockPalette[block.ColorTag%timetable.PaletteSize]
	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x, y, w, h, blockRadius)
	dc.Fill()

	r.setFont(dc, blockNameFontSize)
	dc.SetColor(blockTextColor)
	dc.DrawStringAnchored(block.Name, x+w/2, y+h/2-blockMetaFontSize, 0.5, 0.5)

	if block.Location != "" || block.TeacherName != "" {
		meta := block.Location
		if meta != "" && block.TeacherName != "" {
			meta += " / "
		}
		meta += block.TeacherName
		r.setFont(dc, blockMetaFontSize)
		dc.DrawStringAnchored(meta, x+w/2, y+h/2+blockNameFontSize/2, 0.5, 0.5)
	}
}

func (r *Renderer) drawCurrentTimeLine(dc *gg.Context, now time.Time, hourHeight float64) {
	minutes := now.Hour()*60 + now.Minute()
	visibleStart := r.visibleStartHour * 60
	visibleEnd := r.visibleEndHour * 60
	if minutes < visibleStart || minutes > visibleEnd {
		return
	}

	y := float64(headerHeight) + float64(minutes-visibleStart)*hourHeight/60
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2)
	dc.DrawLine(leftLabelsWidth, y, imageWidth, y)
	dc.Stroke()
}

// setFont installs the configured typeface at the given size, falling back to
// the built-in bitmap face when no font was loaded.
func (r *Renderer) setFont(dc *gg.Context, size float64) {
	if r.font == nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}

	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	dc.SetFontFace(face)
}
