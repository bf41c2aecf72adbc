package attendance

import (
	"errors"
	"fmt"

	"github.com/balkashynov/punch/internal/models"
)

// Validation failures: the operation was invoked against a session in the
// wrong state and nothing was written.
var (
	ErrNotClockedIn     = errors.New("not clocked in")
	ErrAlreadyClockedIn = errors.New("already clocked in")
	ErrNotOnBreak       = errors.New("not on a break")
	ErrAlreadyOnBreak   = errors.New("already on a break")
	ErrNotPaused        = errors.New("not paused")
	ErrAlreadyPaused    = errors.New("already paused")
	ErrInvalidClockType = errors.New("invalid clock type")
)

// ErrConcurrentUpdate means another writer changed the session between our
// read and our write. The caller can re-issue the action.
var ErrConcurrentUpdate = errors.New("session was modified concurrently")

// TransitionError reports a rejected state transition
type TransitionError struct {
	Op     string
	Status models.SessionStatus // empty when the user is clocked out
	Err    error
}

func (e *TransitionError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v (session is %s)", e.Op, e.Err, e.Status)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a rejected transition rather than a
// storage failure
func IsValidation(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

func reject(op string, s *models.AttendanceSession, err error) error {
	te := &TransitionError{Op: op, Err: err}
	if s != nil {
		te.Status = s.Status
	}
	return te
}
