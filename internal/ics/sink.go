package ics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/schedkit/timetable-bot/internal/timetable"
)

// Sink failure classes. Callers retry on neither; a hard failure means the
// sink is unusable, a soft failure means there was simply nothing there.
var (
	ErrSinkPermission = errors.New("calendar sink: permission denied")
	ErrSinkNotFound   = errors.New("calendar sink: not found")
)

// SweepPolicy selects how aggressively Reconcile removes previously written
// events before appending fresh ones.
type SweepPolicy int

const (
	// SweepTagged removes only events carrying the ownership tag. This is
	// the primary mechanism; the tag is the single source of truth for
	// "do we own this entry".
	SweepTagged SweepPolicy = iota

	// SweepTaggedAndTitled additionally removes tag-less events whose
	// summary matches a materialized course name and whose start falls in
	// the materialized date range. Deliberately lossy: it covers events
	// written before tagging existed, at the cost of possibly touching a
	// user's own same-titled entries.
	SweepTaggedAndTitled
)

// ReconcileStats reports what one reconcile pass did to the sink.
type ReconcileStats struct {
	Swept   int
	Kept    int
	Written int
}

// Sink consumes materialized occurrences. The core only computes what to
// schedule; delivery lives behind this boundary.
type Sink interface {
	Reconcile(ctx context.Context, occurrences []timetable.Occurrence, policy SweepPolicy) (ReconcileStats, error)
}

// FileSink writes the timetable into a single ICS file. Reconcile is
// mark-and-sweep: events owned by this application (tag match) are dropped
// and rewritten, everything else in the file survives untouched.
type FileSink struct {
	path   string
	logger *zap.Logger
}

func NewFileSink(path string, logger *zap.Logger) *FileSink {
	return &FileSink{
		path:   path,
		logger: logger,
	}
}

// Reconcile replaces this application's events in the ICS file with the
// given occurrences. The write is atomic (temp file + rename), so a failed
// pass leaves the previous file intact.
func (s *FileSink) Reconcile(ctx context.Context, occurrences []timetable.Occurrence, policy SweepPolicy) (ReconcileStats, error) {
	var stats ReconcileStats

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	kept, swept, err := s.readForeignEvents(occurrences, policy)
	if err != nil {
		return stats, err
	}
	stats.Kept = len(kept)
	stats.Swept = swept

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//schedkit//timetable-bot//EN")

	for _, ev := range kept {
		cal.AddVEvent(ev)
	}

	now := time.Now()
	for _, group := range groupByRule(occurrences) {
		stats.Written += appendRuleEvents(cal, group, now)
	}

	if err := s.writeAtomic([]byte(cal.Serialize())); err != nil {
		return stats, err
	}

	s.logger.Info("Calendar sink reconciled",
		zap.String("path", s.path),
		zap.Int("swept", stats.Swept),
		zap.Int("kept", stats.Kept),
		zap.Int("written", stats.Written),
	)

	return stats, nil
}

// ClearOwned removes every event this application created and keeps the rest
// of the file as-is. A missing file is a soft failure.
func (s *FileSink) ClearOwned(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, classifyFSError(err)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("parse calendar sink: %w", err)
	}

	out := ical.NewCalendar()
	out.SetMethod(ical.MethodPublish)
	out.SetProductId("-//schedkit//timetable-bot//EN")

	removed := 0
	for _, ev := range cal.Events() {
		if isOwned(ev) {
			removed++
			continue
		}
		out.AddVEvent(ev)
	}

	if err := s.writeAtomic([]byte(out.Serialize())); err != nil {
		return 0, err
	}

	s.logger.Info("Calendar sink cleared", zap.String("path", s.path), zap.Int("removed", removed))
	return removed, nil
}

// readForeignEvents loads the current sink file and returns the events that
// must survive the sweep, plus the count of removed ones. A missing file is
// an empty sink, not an error.
func (s *FileSink) readForeignEvents(occurrences []timetable.Occurrence, policy SweepPolicy) ([]*ical.VEvent, int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, classifyFSError(err)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		// An unparseable sink is treated as hard: silently overwriting a
		// user's corrupted-but-recoverable calendar would lose their data.
		return nil, 0, fmt.Errorf("parse calendar sink: %w", err)
	}

	names := make(map[string]bool)
	var rangeStart, rangeEnd time.Time
	for _, occ := range occurrences {
		names[occ.Rule.Name] = true
		if rangeStart.IsZero() || occ.Start.Before(rangeStart) {
			rangeStart = occ.Start
		}
		if occ.End.After(rangeEnd) {
			rangeEnd = occ.End
		}
	}

	var kept []*ical.VEvent
	swept := 0
	for _, ev := range cal.Events() {
		if isOwned(ev) {
			swept++
			continue
		}
		if policy == SweepTaggedAndTitled && matchesTitleAndRange(ev, names, rangeStart, rangeEnd) {
			swept++
			continue
		}
		kept = append(kept, ev)
	}

	return kept, swept, nil
}

// isOwned reports whether the event carries the ownership tag.
func isOwned(ev *ical.VEvent) bool {
	p := ev.GetProperty(ical.ComponentPropertyUrl)
	return p != nil && p.Value == timetable.OwnershipTag
}

// matchesTitleAndRange is the lossy fallback sweep for events written before
// tagging existed.
func matchesTitleAndRange(ev *ical.VEvent, names map[string]bool, rangeStart, rangeEnd time.Time) bool {
	if len(names) == 0 {
		return false
	}
	summary := ev.GetProperty(ical.ComponentPropertySummary)
	if summary == nil || !names[summary.Value] {
		return false
	}
	start, err := ev.GetStartAt()
	if err != nil {
		return false
	}
	return !start.Before(rangeStart) && !start.After(rangeEnd)
}

// ruleGroup keeps one rule's occurrences in materialization order (week
// ascending).
type ruleGroup struct {
	occurrences []timetable.Occurrence
}

func groupByRule(occurrences []timetable.Occurrence) []ruleGroup {
	index := make(map[int64]int)
	var groups []ruleGroup
	for _, occ := range occurrences {
		i, ok := index[occ.Rule.ID]
		if !ok {
			i = len(groups)
			index[occ.Rule.ID] = i
			groups = append(groups, ruleGroup{})
		}
		groups[i].occurrences = append(groups[i].occurrences, occ)
	}
	return groups
}

// appendRuleEvents writes one rule into the calendar. A rule active in one
// contiguous run of weeks becomes a single weekly RRULE event; sparse week
// sets fall back to one event per occurrence.
func appendRuleEvents(cal *ical.Calendar, group ruleGroup, now time.Time) int {
	occs := group.occurrences
	if len(occs) == 0 {
		return 0
	}
	rule := occs[0].Rule

	if len(occs) > 1 && weeksContiguous(occs) {
		ev := cal.AddEvent(fmt.Sprintf("course-%d@schedkit.dev", rule.ID))
		fillEvent(ev, occs[0], now)

		r, err := rrule.NewRRule(rrule.ROption{
			Freq:    rrule.WEEKLY,
			Count:   len(occs),
			Dtstart: occs[0].Start,
		})
		if err == nil {
			ev.AddRrule(r.String())
			return 1
		}
		// Fall through to discrete events if the rule could not be built;
		// the single event added above becomes the first occurrence.
		occs = occs[1:]
	}

	written := 0
	for _, occ := range occs {
		ev := cal.AddEvent(fmt.Sprintf("course-%d-week-%d@schedkit.dev", rule.ID, occ.WeekNumber))
		fillEvent(ev, occ, now)
		written++
	}
	if len(group.occurrences) != len(occs) {
		written++ // counts the RRULE-carrying first event from the fallback path
	}
	return written
}

func fillEvent(ev *ical.VEvent, occ timetable.Occurrence, now time.Time) {
	rule := occ.Rule
	ev.SetCreatedTime(now)
	ev.SetDtStampTime(now)
	ev.SetStartAt(occ.Start)
	ev.SetEndAt(occ.End)
	ev.SetSummary(rule.Name)
	if rule.Location != "" {
		ev.SetLocation(rule.Location)
	}
	note := timetable.NotePrefix + rule.TeacherName
	ev.SetDescription(note)
	ev.SetURL(timetable.OwnershipTag)
}

// weeksContiguous reports whether the occurrences cover consecutive week
// numbers.
func weeksContiguous(occs []timetable.Occurrence) bool {
	for i := 1; i < len(occs); i++ {
		if occs[i].WeekNumber != occs[i-1].WeekNumber+1 {
			return false
		}
	}
	return true
}

// writeAtomic writes the serialized calendar via a temp file and rename so a
// failed pass never corrupts the sink.
func (s *FileSink) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return classifyFSError(err)
	}

	tmp, err := os.CreateTemp(dir, ".timetable-*.ics.tmp")
	if err != nil {
		return classifyFSError(err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write calendar sink: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write calendar sink: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return classifyFSError(err)
	}
	return nil
}

// classifyFSError maps filesystem errors onto the sink failure classes so
// callers can distinguish "retry is pointless" from "nothing there yet".
func classifyFSError(err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrSinkPermission, err)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrSinkNotFound, err)
	default:
		return err
	}
}
