package worktime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWallMinutes(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"09:00", "17:30", 510},
		{"09:00", "09:00", 0},
		{"22:00", "01:30", 210},
		{"23:59", "00:00", 1},
	}
	for _, tt := range tests {
		got, err := WallMinutes(tt.start, tt.end)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.start, tt.end)
	}
}

func TestWallMinutes_Invalid(t *testing.T) {
	_, err := WallMinutes("9am", "17:00")
	assert.Error(t, err)
	_, err = WallMinutes("09:00", "25:00")
	assert.Error(t, err)
}

func TestWallClock(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	assert.Equal(t, "11:05", WallClock(time.Date(2026, 10, 15, 9, 5, 0, 0, time.UTC), loc))
}
