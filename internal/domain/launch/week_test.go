package launch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeWindow_NextWeekBoundaries(t *testing.T) {
	wantStart := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 3, 23, 23, 59, 59, 0, time.UTC)

	cases := map[string]time.Time{
		"thursday":           time.Date(2025, 3, 13, 14, 30, 0, 0, time.UTC),
		"monday midnight":    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		"monday afternoon":   time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
		"sunday last second": time.Date(2025, 3, 16, 23, 59, 59, 0, time.UTC),
		"saturday":           time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	for name, now := range cases {
		t.Run(name, func(t *testing.T) {
			start, end := ComputeWindow(now)
			assert.True(t, wantStart.Equal(start), "start = %s", start)
			assert.True(t, wantEnd.Equal(end), "end = %s", end)
		})
	}
}

func TestComputeWindow_StableWithinDay(t *testing.T) {
	day := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	firstStart, firstEnd := ComputeWindow(day)

	for h := 0; h < 24; h++ {
		start, end := ComputeWindow(day.Add(time.Duration(h)*time.Hour + 17*time.Minute))
		assert.True(t, firstStart.Equal(start))
		assert.True(t, firstEnd.Equal(end))
	}
}

func TestComputeWindow_KeepsLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Ljubljana")
	require.NoError(t, err)

	// Week containing the switch to summer time.
	start, end := ComputeWindow(time.Date(2025, 3, 26, 9, 0, 0, 0, loc))

	assert.Equal(t, loc, start.Location())
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 4, 6, 23, 59, 59, 0, loc), end)
}

func TestNewWindowKey_ISOWeek(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		wantYear int
		wantWeek int
	}{
		{"mid march", time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC), 2025, 12},
		{"monday in december opens next iso year", time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), 2026, 1},
		{"week 53", time.Date(2026, 12, 27, 0, 0, 0, 0, time.UTC), 2026, 53},
		{"first monday of january", time.Date(2020, 12, 30, 0, 0, 0, 0, time.UTC), 2021, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewWindowKey(tt.now)
			assert.Equal(t, tt.wantYear, key.Year)
			assert.Equal(t, tt.wantWeek, key.WeekNumber)
			assert.Equal(t, time.Monday, key.Start.Weekday())
			assert.Equal(t, time.Sunday, key.End.Weekday())
		})
	}
}
