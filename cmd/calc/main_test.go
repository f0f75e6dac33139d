package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

func TestReadRoster(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		workers, hours, err := readRoster(strings.NewReader(`{
			"workers": [
				{"name": "Luca De Candia", "preferences": [{"day": 2, "shift": 0}], "workedHours": 10},
				{"name": "Vincenzo Miccichè", "targetHours": 100}
			]
		}`))
		require.NoError(t, err)
		require.Len(t, workers, 2)
		assert.Equal(t, 140.0, workers[0].RemainingHours())
		assert.True(t, workers[0].Prefers(domain.Wednesday, domain.Morning))
		assert.Equal(t, 100.0, workers[1].RemainingHours())
		assert.Equal(t, domain.DefaultShiftHours().Table(), hours.Table())
	})

	t.Run("uses a custom hour table", func(t *testing.T) {
		_, hours, err := readRoster(strings.NewReader(`{"hours": [[1, 2], [3, 4]], "workers": [{"name": "A"}]}`))
		require.NoError(t, err)
		assert.Equal(t, 2, hours.Days())
		assert.Equal(t, 4.0, hours.Hours(domain.Tuesday, domain.Afternoon))
	})

	t.Run("rejects bad input", func(t *testing.T) {
		for _, in := range []string{
			`{"workers": []}`,
			`{"workers": [{"name": "A", "age": 3}]}`,
			`{"hours": [[1, 2], [3]], "workers": [{"name": "A"}]}`,
			`not json`,
		} {
			_, _, err := readRoster(strings.NewReader(in))
			assert.Error(t, err, in)
		}
	})
}

func TestPrintCalendars(t *testing.T) {
	workers := []domain.Worker{domain.NewWorker("A", domain.Preference{Day: domain.Monday, Shift: domain.Afternoon})}
	schedule := &domain.Schedule{
		Days:   2,
		Shifts: 2,
		Workers: []domain.WorkerSchedule{{
			Worker: "A",
			Assignments: []domain.Assignment{
				{Day: domain.Monday, Shift: domain.Morning, Hours: 4},
				{Day: domain.Tuesday, Shift: domain.Afternoon, Hours: 4.5},
			},
			HoursWorked:       8.5,
			RemainingHours:    150,
			NewRemainingHours: 141.5,
		}},
	}

	var sb strings.Builder
	printCalendars(&sb, schedule, workers)

	assert.Equal(t, "person:0 A\n"+
		"d0: [1][0] - [ ][x]\n"+
		"d1: [0][1] - [ ][ ]\n"+
		"TOT WEEK HOURS: 8.5h\n"+
		"REMAINING: 141.5h\n\n", sb.String())
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "04", formatHours(4))
	assert.Equal(t, "12", formatHours(12))
	assert.Equal(t, "00", formatHours(0))
	assert.Equal(t, "-6", formatHours(-6))
}
