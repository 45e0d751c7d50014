package main

import (
	"fmt"
	"os"
	"time"

	"github.com/schedkit/timetable-bot/internal/render"
	"github.com/schedkit/timetable-bot/internal/timetable"
)

// Renders a sample week to week_test.png for eyeballing layout changes.
func main() {
	blocks := []timetable.DisplayBlock{
		{Name: "Calculus", TeacherName: "Prof. Leibniz", Location: "M-204", WeekdayOrdinal: 1, StartSlot: 1, SlotSpan: 2, ColorTag: 0},
		{Name: "Algorithms", TeacherName: "Dr. Hoare", Location: "A-101", WeekdayOrdinal: 1, StartSlot: 5, SlotSpan: 2, ColorTag: 1},
		{Name: "Physics", TeacherName: "Dr. Noether", Location: "P-3", WeekdayOrdinal: 2, StartSlot: 3, SlotSpan: 2, ColorTag: 2},
		{Name: "English", Location: "H-12", WeekdayOrdinal: 3, StartSlot: 1, SlotSpan: 1, ColorTag: 3},
		{Name: "Operating Systems", TeacherName: "Dr. Ritchie", Location: "A-107", WeekdayOrdinal: 3, StartSlot: 7, SlotSpan: 2, ColorTag: 4},
		{Name: "Databases", TeacherName: "Dr. Codd", Location: "A-101", WeekdayOrdinal: 4, StartSlot: 5, SlotSpan: 2, ColorTag: 5},
		{Name: "Statistics", Location: "M-101", WeekdayOrdinal: 5, StartSlot: 3, SlotSpan: 2, ColorTag: 6},
		{Name: "Seminar", WeekdayOrdinal: 5, StartSlot: 9, SlotSpan: 1, ColorTag: 7},
	}

	renderer := render.NewRenderer(timetable.DefaultPeriods(), timetable.MondayFirst, 7, 21, os.Getenv("FONT_PATH"))

	data, err := renderer.RenderWeek(blocks, "Sample week", time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}

	const out = "week_test.png"
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Image saved to %s (%d bytes)\n", out, len(data))
}
