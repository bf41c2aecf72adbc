package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/testutil"
)

func newScheduler(t *testing.T) (*Scheduler, *gorm.DB, *testutil.RecordingNotifier) {
	t.Helper()
	db := testutil.NewTestDB(t)
	rec := &testutil.RecordingNotifier{}
	return New(db, rec, Options{Location: time.UTC}), db, rec
}

func create(t *testing.T, db *gorm.DB, s *models.AttendanceSession) *models.AttendanceSession {
	t.Helper()
	require.NoError(t, db.Create(s).Error)
	return s
}

func TestNew_Defaults(t *testing.T) {
	s := New(nil, nil, Options{})
	assert.Equal(t, 470*time.Minute, s.Threshold())
	assert.Equal(t, time.Minute, s.opts.Interval)
}

func TestScenarioE_FiresOnceAtThreshold(t *testing.T) {
	sched, db, rec := newScheduler(t)
	ctx := context.Background()
	session := create(t, db, testutil.NewTestSession("u1", testutil.At(9, 0)))

	fired, err := sched.Tick(ctx, testutil.At(16, 49))
	require.NoError(t, err)
	assert.Zero(t, fired)

	fired, err = sched.Tick(ctx, testutil.At(16, 50))
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	sent := rec.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, Title, sent[0].Title)
	assert.Equal(t, "u1", sent[0].UserID)
	assert.Equal(t, models.NotificationTypeAttendance, sent[0].Type)
	assert.Contains(t, sent[0].Message, "7h50m")

	var got models.AttendanceSession
	require.NoError(t, db.First(&got, "id = ?", session.ID).Error)
	require.NotNil(t, got.ReminderSentAt)
	assert.True(t, got.ReminderSentAt.Equal(testutil.At(16, 50)))

	// A retroactive break drops the session below the threshold; crossing
	// it again later does not re-fire.
	require.NoError(t, db.Model(&models.AttendanceSession{}).
		Where("id = ?", session.ID).
		Update("total_break_minutes", 60).Error)

	for _, at := range []time.Time{testutil.At(17, 0), testutil.At(17, 50), testutil.At(18, 30)} {
		fired, err = sched.Tick(ctx, at)
		require.NoError(t, err)
		assert.Zero(t, fired)
	}
	assert.Len(t, rec.Sent(), 1)
}

func TestTick_NewSessionStartsUnreminded(t *testing.T) {
	sched, db, rec := newScheduler(t)
	ctx := context.Background()

	create(t, db, testutil.NewTestSession("u1", testutil.At(0, 0),
		testutil.WithClockOut(testutil.At(8, 0))))
	first := create(t, db, testutil.NewTestSession("u1", testutil.At(0, 30)))
	now := first.ClockIn.Add(8 * time.Hour)
	fired, err := sched.Tick(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	require.NoError(t, db.Model(&models.AttendanceSession{}).
		Where("id = ?", first.ID).
		Updates(map[string]any{"clock_out": now, "status": models.StatusCompleted}).Error)

	second := create(t, db, testutil.NewTestSession("u1", now.Add(time.Hour)))
	assert.Nil(t, second.ReminderSentAt)

	fired, err = sched.Tick(ctx, second.ClockIn.Add(7*time.Hour+50*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Len(t, rec.Sent(), 2)
}

func TestTick_SkipsSessionsNotActive(t *testing.T) {
	sched, db, rec := newScheduler(t)

	create(t, db, testutil.NewTestSession("on-break", testutil.At(0, 0),
		testutil.WithOpenBreak(testutil.At(12, 0))))
	create(t, db, testutil.NewTestSession("paused", testutil.At(0, 0),
		testutil.WithOpenPause(testutil.At(12, 0))))
	create(t, db, testutil.NewTestSession("done", testutil.At(0, 0),
		testutil.WithClockOut(testutil.At(12, 0))))
	create(t, db, testutil.NewTestSession("short", testutil.At(15, 0)))

	fired, err := sched.Tick(context.Background(), testutil.At(20, 0))
	require.NoError(t, err)
	assert.Zero(t, fired)
	assert.Empty(t, rec.Sent())
}

func TestTick_BreaksCountAgainstThreshold(t *testing.T) {
	sched, db, _ := newScheduler(t)
	create(t, db, testutil.NewTestSession("u1", testutil.At(9, 0), testutil.WithBreakMinutes(30)))

	fired, err := sched.Tick(context.Background(), testutil.At(16, 50))
	require.NoError(t, err)
	assert.Zero(t, fired)

	fired, err = sched.Tick(context.Background(), testutil.At(17, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}

func TestCheck(t *testing.T) {
	sched, db, rec := newScheduler(t)
	ctx := context.Background()
	session := create(t, db, testutil.NewTestSession("u1", testutil.At(9, 0)))

	ok, err := sched.Check(ctx, session.ID, testutil.At(12, 0))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = sched.Check(ctx, session.ID, testutil.At(17, 0))
	require.NoError(t, err)
	assert.True(t, ok)

	// Another instance racing on the same session loses
	ok, err = sched.Check(ctx, session.ID, testutil.At(17, 1))
	require.NoError(t, err)
	assert.False(t, ok)

	fired, err := sched.Tick(ctx, testutil.At(17, 2))
	require.NoError(t, err)
	assert.Zero(t, fired)
	assert.Len(t, rec.Sent(), 1)

	ok, err = sched.Check(ctx, "missing", testutil.At(17, 0))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeliveryFailureStillMarksSession(t *testing.T) {
	sched, db, rec := newScheduler(t)
	rec.Err = errors.New("push gateway down")
	session := create(t, db, testutil.NewTestSession("u1", testutil.At(9, 0)))

	ok, err := sched.Check(context.Background(), session.ID, testutil.At(17, 0))
	require.NoError(t, err)
	assert.True(t, ok)

	var got models.AttendanceSession
	require.NoError(t, db.First(&got, "id = ?", session.ID).Error)
	assert.NotNil(t, got.ReminderSentAt)
}

func TestRun_StopsOnCancel(t *testing.T) {
	db := testutil.NewTestDB(t)
	rec := &testutil.RecordingNotifier{}
	create(t, db, testutil.NewTestSession("u1", testutil.At(9, 0)))
	clock := testutil.NewClock(testutil.At(17, 0))
	sched := New(db, rec, Options{Interval: 10 * time.Millisecond, Clock: clock.Now, Location: time.UTC})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	require.Eventually(t, func() bool { return len(rec.Sent()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Len(t, rec.Sent(), 1)
}
