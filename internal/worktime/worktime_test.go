package worktime

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/testutil"
)

func TestNetWorked_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		session *models.AttendanceSession
		want    time.Duration
	}{
		{
			name:    "A: no break or pause",
			session: testutil.NewTestSession("u1", testutil.At(9, 0), testutil.WithClockOut(testutil.At(17, 0))),
			want:    8 * time.Hour,
		},
		{
			name: "B: half hour break",
			session: testutil.NewTestSession("u1", testutil.At(9, 0),
				testutil.WithBreakMinutes(30), testutil.WithClockOut(testutil.At(17, 0))),
			want: 7*time.Hour + 30*time.Minute,
		},
		{
			name: "C: quarter hour pause",
			session: testutil.NewTestSession("u1", testutil.At(9, 0),
				testutil.WithPauseMinutes(15), testutil.WithClockOut(testutil.At(17, 0))),
			want: 7*time.Hour + 45*time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NetWorked(tt.session, testutil.At(23, 0)))
		})
	}
}

func TestNetWorked_OpenIntervals(t *testing.T) {
	now := testutil.At(12, 30)

	onBreak := testutil.NewTestSession("u1", testutil.At(9, 0), testutil.WithOpenBreak(testutil.At(12, 0)))
	assert.Equal(t, 3*time.Hour, NetWorked(onBreak, now))

	paused := testutil.NewTestSession("u1", testutil.At(9, 0),
		testutil.WithBreakMinutes(10), testutil.WithOpenPause(testutil.At(12, 20)))
	assert.Equal(t, 3*time.Hour+10*time.Minute, NetWorked(paused, now))

	active := testutil.NewTestSession("u1", testutil.At(9, 0), testutil.WithPauseMinutes(30))
	assert.Equal(t, 3*time.Hour, NetWorked(active, now))
	assert.Equal(t, 180, NetWorkedMinutes(active, now))
}

func TestNetWorked_NeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := testutil.At(0, 0)

	for i := 0; i < 500; i++ {
		clockIn := base.Add(time.Duration(rng.Intn(24*60)) * time.Minute)
		s := testutil.NewTestSession("u1", clockIn,
			testutil.WithBreakMinutes(rng.Intn(2000)),
			testutil.WithPauseMinutes(rng.Intn(2000)),
		)
		switch rng.Intn(3) {
		case 1:
			s.BreakStart = ptr(clockIn.Add(time.Duration(rng.Intn(600)) * time.Minute))
		case 2:
			s.PauseStart = ptr(clockIn.Add(time.Duration(rng.Intn(600)) * time.Minute))
		}
		s.DeriveStatus()

		now := base.Add(time.Duration(rng.Intn(48*60)-12*60) * time.Minute)
		assert.GreaterOrEqual(t, NetWorked(s, now), time.Duration(0))
	}

	assert.Equal(t, time.Duration(0), NetWorked(nil, base))
}

func TestRoundTripWithBreak(t *testing.T) {
	t0, t1, t2, t3 := testutil.At(8, 47), testutil.At(11, 58), testutil.At(12, 41), testutil.At(16, 3)

	breakMinutes := RoundMinutes(t2.Sub(t1))
	s := testutil.NewTestSession("u1", t0, testutil.WithBreakMinutes(breakMinutes), testutil.WithClockOut(t3))

	want := int(t3.Sub(t0).Minutes()) - int(t2.Sub(t1).Minutes())
	assert.Equal(t, want, NetWorkedMinutes(s, t3))
}

func TestEntryHours(t *testing.T) {
	open := testutil.NewTestSession("u1", testutil.At(9, 0))
	assert.Zero(t, EntryHours(open))

	s := testutil.NewTestSession("u1", testutil.At(9, 0),
		testutil.WithBreakMinutes(20), testutil.WithPauseMinutes(10), testutil.WithClockOut(testutil.At(17, 0)))
	assert.InDelta(t, 7.5, EntryHours(s), 1e-9)

	over := testutil.NewTestSession("u1", testutil.At(9, 0),
		testutil.WithBreakMinutes(600), testutil.WithClockOut(testutil.At(10, 0)))
	assert.Zero(t, EntryHours(over))
}

func TestRangeHours(t *testing.T) {
	sessions := []models.AttendanceSession{
		*testutil.NewTestSession("u1", testutil.At(9, 0), testutil.WithClockOut(testutil.At(12, 0))),
		*testutil.NewTestSession("u1", testutil.At(13, 0), testutil.WithBreakMinutes(30), testutil.WithClockOut(testutil.At(17, 0))),
		*testutil.NewTestSession("u1", testutil.At(18, 0)), // still open
		*testutil.NewTestSession("u1", testutil.At(9, 0).AddDate(0, 0, -1), testutil.WithClockOut(testutil.At(17, 0).AddDate(0, 0, -1))),
	}

	start, end := testutil.At(0, 0), testutil.At(23, 59)
	first := RangeHours(sessions, start, end)
	assert.InDelta(t, 6.5, first, 1e-9)

	// Pure: same input, same output
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, RangeHours(sessions, start, end))
	}

	// Bounds are inclusive
	assert.InDelta(t, 3.0, RangeHours(sessions, testutil.At(9, 0), testutil.At(9, 0)), 1e-9)
}

func TestRoundMinutes(t *testing.T) {
	assert.Equal(t, 15, RoundMinutes(15*time.Minute))
	assert.Equal(t, 15, RoundMinutes(15*time.Minute+29*time.Second))
	assert.Equal(t, 16, RoundMinutes(15*time.Minute+30*time.Second))
	assert.Equal(t, 0, RoundMinutes(29*time.Second))
	assert.Equal(t, 0, RoundMinutes(-5*time.Minute))
}

func ptr[T any](v T) *T {
	return &v
}
