package timetable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePeriodDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "periods.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadPeriods(t *testing.T) {
	path := writePeriodDoc(t, `
periods:
  "1": { start: "09:00", end: "09:45" }
  "2": { start: "10:00", end: "10:45" }
  "3": { start: "11:00", end: "11:45" }
`)

	table, err := LoadPeriods(path)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	slot, ok := table.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, 10*60, slot.StartMinutes)
	assert.Equal(t, 10*60+45, slot.EndMinutes)
}

func TestLoadPeriodsFailsAtomically(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "non-numeric slot name",
			content: `
periods:
  "morning": { start: "09:00", end: "09:45" }
`,
		},
		{
			name: "zero slot name",
			content: `
periods:
  "0": { start: "09:00", end: "09:45" }
`,
		},
		{
			name: "bad time string",
			content: `
periods:
  "1": { start: "9 o'clock", end: "09:45" }
`,
		},
		{
			name: "inverted range",
			content: `
periods:
  "1": { start: "10:00", end: "09:45" }
`,
		},
		{
			name: "overlapping slots",
			content: `
periods:
  "1": { start: "09:00", end: "10:00" }
  "2": { start: "09:30", end: "10:30" }
`,
		},
		{
			name:    "empty document",
			content: "periods: {}\n",
		},
		{
			name:    "not yaml",
			content: "{{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := LoadPeriods(writePeriodDoc(t, tt.content))
			assert.Error(t, err)
			assert.Nil(t, table)
		})
	}
}

func TestLoadPeriodsMissingFile(t *testing.T) {
	_, err := LoadPeriods(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
