package timetable

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// periodDocument is the on-disk shape of an alternate period table: a map of
// slot names to time ranges. Names must parse as positive integers; keeping
// names as strings lets hand-edited documents stay readable.
//
//	periods:
//	  "1": { start: "08:00", end: "08:40" }
//	  "2": { start: "08:50", end: "09:30" }
type periodDocument struct {
	Periods map[string]periodEntry `yaml:"periods"`
}

type periodEntry struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// LoadPeriods reads an alternate period table from a YAML document. The load
// is atomic: any malformed slot name, time string or table invariant fails
// the whole load and the caller keeps its current table. Non-numeric slot
// names are rejected outright rather than coerced to a sentinel index.
func LoadPeriods(path string) (*PeriodTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read period table: %w", err)
	}

	var doc periodDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse period table: %w", err)
	}
	if len(doc.Periods) == 0 {
		return nil, fmt.Errorf("parse period table: document has no periods")
	}

	slots := make([]PeriodSlot, 0, len(doc.Periods))
	for name, entry := range doc.Periods {
		index, err := strconv.Atoi(strings.TrimSpace(name))
		if err != nil || index < 1 {
			return nil, fmt.Errorf("parse period table: slot name %q is not a positive integer", name)
		}

		start, err := parseMinutesOfDay(entry.Start)
		if err != nil {
			return nil, fmt.Errorf("parse period table: slot %q start: %w", name, err)
		}
		end, err := parseMinutesOfDay(entry.End)
		if err != nil {
			return nil, fmt.Errorf("parse period table: slot %q end: %w", name, err)
		}

		slots = append(slots, PeriodSlot{Index: index, StartMinutes: start, EndMinutes: end})
	}

	table, err := NewPeriodTable(slots)
	if err != nil {
		return nil, fmt.Errorf("parse period table: %w", err)
	}
	return table, nil
}

// parseMinutesOfDay parses "HH:MM" into minutes since midnight.
func parseMinutesOfDay(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("time %q is not in HH:MM form", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("time %q has a bad hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("time %q has a bad minute", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q is out of range", s)
	}
	return hour*60 + minute, nil
}
