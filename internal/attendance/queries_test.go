package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/testutil"
)

func day(month time.Month, d, hour, minute int) time.Time {
	return time.Date(2026, month, d, hour, minute, 0, 0, time.UTC)
}

func seedHistory(t *testing.T, f *fixture) {
	t.Helper()
	sessions := []*models.AttendanceSession{
		testutil.NewTestSession("u1", day(time.September, 30, 9, 0),
			testutil.WithClockOut(day(time.September, 30, 17, 0))),
		testutil.NewTestSession("u1", day(time.October, 2, 9, 0),
			testutil.WithClockOut(day(time.October, 2, 11, 0))),
		testutil.NewTestSession("u1", day(time.October, 13, 9, 0),
			testutil.WithClockOut(day(time.October, 13, 17, 0)), testutil.WithBreakMinutes(60)),
		testutil.NewTestSession("u1", day(time.October, 15, 9, 0),
			testutil.WithClockOut(day(time.October, 15, 12, 30)), testutil.WithPauseMinutes(30)),
		testutil.NewTestSession("u2", day(time.October, 15, 8, 0),
			testutil.WithClockOut(day(time.October, 15, 18, 0))),
	}
	for _, s := range sessions {
		require.NoError(t, f.db.Create(s).Error)
	}
}

func TestGetStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	st, err := f.mgr.GetStatus(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StateOut, st.State)
	assert.Nil(t, st.Session)

	_, err = f.mgr.ClockIn(ctx, "u1", ClockInRequest{})
	require.NoError(t, err)
	f.clock.Set(testutil.At(10, 0))
	_, err = f.mgr.StartBreak(ctx, "u1")
	require.NoError(t, err)

	f.clock.Set(testutil.At(10, 20))
	st, err = f.mgr.GetStatus(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, string(models.StatusOnBreak), st.State)
	require.NotNil(t, st.Session)
	assert.Equal(t, time.Hour, st.NetWorked)
	assert.Equal(t, 60, st.NetWorkedMinutes)
}

func TestHistory(t *testing.T) {
	f := setup(t)
	seedHistory(t, f)

	sessions, err := f.mgr.History(context.Background(), "u1", day(time.October, 1, 0, 0), day(time.October, 31, 23, 59))
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.True(t, sessions[0].ClockIn.Equal(day(time.October, 2, 9, 0)))
	assert.True(t, sessions[2].ClockIn.Equal(day(time.October, 15, 9, 0)))
}

func TestMonthlyHours(t *testing.T) {
	f := setup(t)
	seedHistory(t, f)
	ctx := context.Background()

	// An open session never counts
	f.clock.Set(testutil.At(14, 0))
	_, err := f.mgr.ClockIn(ctx, "u1", ClockInRequest{})
	require.NoError(t, err)

	oct, err := f.mgr.MonthlyHours(ctx, "u1", day(time.October, 20, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 12.0, oct)

	sep, err := f.mgr.MonthlyHours(ctx, "u1", day(time.September, 1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 8.0, sep)

	nov, err := f.mgr.MonthlyHours(ctx, "u1", day(time.November, 1, 0, 0))
	require.NoError(t, err)
	assert.Zero(t, nov)
}

func TestTimeBreakdown(t *testing.T) {
	f := setup(t)
	seedHistory(t, f)
	f.clock.Set(testutil.At(18, 0))

	b, err := f.mgr.TimeBreakdown(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3.0, b.Today)
	assert.Equal(t, 10.0, b.Week)
	assert.Equal(t, 12.0, b.Month)
	assert.Len(t, b.Entries, 3)
}

func TestTimeBreakdown_WeekSpanningMonths(t *testing.T) {
	f := setup(t)
	for _, s := range []*models.AttendanceSession{
		testutil.NewTestSession("u1", day(time.September, 30, 9, 0),
			testutil.WithClockOut(day(time.September, 30, 17, 0))),
		testutil.NewTestSession("u1", day(time.October, 1, 9, 0),
			testutil.WithClockOut(day(time.October, 1, 10, 30))),
	} {
		require.NoError(t, f.db.Create(s).Error)
	}
	// Thursday 1 October: the week began on Monday 28 September
	f.clock.Set(day(time.October, 1, 18, 0))

	b, err := f.mgr.TimeBreakdown(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1.5, b.Today)
	assert.Equal(t, 9.5, b.Week)
	assert.Equal(t, 1.5, b.Month)
	assert.Len(t, b.Entries, 2)
}
