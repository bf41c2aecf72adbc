package worktime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/testutil"
)

func day(d, hour, minute int) time.Time {
	return time.Date(2026, 10, d, hour, minute, 0, 0, time.UTC)
}

func completed(in, out time.Time, breakMin int) models.AttendanceSession {
	return *testutil.NewTestSession("u1", in, testutil.WithBreakMinutes(breakMin), testutil.WithClockOut(out))
}

func TestMonthlyHours_RoundsToOneDecimal(t *testing.T) {
	sessions := []models.AttendanceSession{
		completed(day(1, 9, 0), day(1, 17, 0), 20),  // 7h40m
		completed(day(2, 9, 0), day(2, 10, 10), 0),  // 1h10m
		completed(day(31, 9, 0), day(31, 10, 0), 0), // 1h
		completed(time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC), time.Date(2026, 11, 1, 17, 0, 0, 0, time.UTC), 0),
	}

	// 7.6667 + 1.1667 + 1 = 9.8333
	assert.Equal(t, 9.8, MonthlyHours(sessions, day(15, 12, 0), time.UTC))
}

func TestTimeBreakdown(t *testing.T) {
	// 2026-10-15 is a Thursday; the week starts Monday 2026-10-12
	sessions := []models.AttendanceSession{
		completed(day(15, 9, 0), day(15, 12, 20), 0),   // today 3.3333
		completed(day(12, 9, 0), day(12, 17, 0), 30),   // Monday 7.5
		completed(day(11, 9, 0), day(11, 10, 0), 0),    // Sunday, previous week
		completed(day(1, 9, 0), day(1, 9, 40), 0),      // earlier this month 0.6667
		*testutil.NewTestSession("u1", day(15, 13, 0)), // open, ignored
	}

	b := TimeBreakdown(sessions, day(15, 18, 0), time.UTC)

	assert.Equal(t, 3.33, b.Today)
	assert.Equal(t, 10.83, b.Week)
	assert.Equal(t, 12.5, b.Month)
	require.Len(t, b.Entries, 4)
	assert.Equal(t, 3.33, b.Entries[0].Hours)
	assert.Equal(t, 7.5, b.Entries[1].Hours)
	assert.Equal(t, 0.67, b.Entries[3].Hours)
	assert.Equal(t, "payroll", b.Entries[0].ClockType)
}

func TestTimeBreakdown_Empty(t *testing.T) {
	b := TimeBreakdown(nil, day(15, 18, 0), time.UTC)
	assert.Zero(t, b.Today)
	assert.NotNil(t, b.Entries)
	assert.Empty(t, b.Entries)
}

func TestWeekStart(t *testing.T) {
	assert.Equal(t, day(12, 0, 0), WeekStart(day(15, 18, 0), time.UTC))
	assert.Equal(t, day(12, 0, 0), WeekStart(day(12, 0, 0), time.UTC))
	assert.Equal(t, day(12, 0, 0), WeekStart(day(18, 23, 59), time.UTC))
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(day(15, 18, 0), time.UTC)
	assert.Equal(t, day(1, 0, 0), start)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), end)
}
