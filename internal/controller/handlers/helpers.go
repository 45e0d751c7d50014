package handlers

import (
	"fmt"

	"github.com/schedkit/timetable-bot/internal/timetable"
)

// formatBlockLine renders one merged class as a single list line with its
// wall-clock span.
func (h *Handlers) formatBlockLine(block timetable.DisplayBlock) string {
	periods := h.timetables.Periods()

	start := periods.StartMinutesOr(block.StartSlot, 0)
	end := periods.EndMinutesOr(block.EndSlot(), 0)

	line := fmt.Sprintf("%s-%s  %s", formatMinutes(start), formatMinutes(end), block.Name)
	if block.Location != "" {
		line += ", " + block.Location
	}
	if block.TeacherName != "" {
		line += " (" + block.TeacherName + ")"
	}
	return line
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
