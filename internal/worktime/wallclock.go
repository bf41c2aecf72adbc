package worktime

import (
	"fmt"
	"time"
)

const (
	wallLayout  = "15:04"
	minutesADay = 24 * 60
)

// WallClock formats t as "HH:MM" in loc
func WallClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(wallLayout)
}

// ParseWallClock returns the minutes since midnight of an "HH:MM" value
func ParseWallClock(s string) (int, error) {
	t, err := time.Parse(wallLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid wall-clock time %q: want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// WallMinutes returns the minutes between two "HH:MM" values. An end before
// the start wraps past midnight: (24h - start) + end.
func WallMinutes(start, end string) (int, error) {
	s, err := ParseWallClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseWallClock(end)
	if err != nil {
		return 0, err
	}
	if e >= s {
		return e - s, nil
	}
	return (minutesADay - s) + e, nil
}
