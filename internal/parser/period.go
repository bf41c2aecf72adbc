package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/punch/internal/worktime"
)

// Period is an inclusive time range with a display label
type Period struct {
	Label string
	Start time.Time
	End   time.Time
}

var (
	dateRegex     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	monthRegex    = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
	relativeRegex = regexp.MustCompile(`^(?:last\s+)?(\d+)\s+(day|days|week|weeks)$`)
)

// ParsePeriod parses a report period relative to now.
// Supported formats:
// - today, yesterday
// - week, last-week (weeks start on Monday)
// - month, last-month
// - dd/mm/yyyy (e.g., "15/10/2026")
// - yyyy-mm (e.g., "2026-10")
// - X days / X weeks (e.g., "7 days"), ending today
func ParsePeriod(input string, now time.Time, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.Local
	}
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		input = "today"
	}

	today := worktime.DayStart(now, loc)
	endOfDay := func(day time.Time) time.Time {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	switch input {
	case "today":
		return Period{Label: "Today", Start: today, End: endOfDay(today)}, nil
	case "yesterday":
		y := today.AddDate(0, 0, -1)
		return Period{Label: "Yesterday", Start: y, End: endOfDay(y)}, nil
	case "week", "this-week":
		start := worktime.WeekStart(now, loc)
		return Period{Label: "This week", Start: start, End: endOfDay(start.AddDate(0, 0, 6))}, nil
	case "last-week":
		start := worktime.WeekStart(now, loc).AddDate(0, 0, -7)
		return Period{Label: "Last week", Start: start, End: endOfDay(start.AddDate(0, 0, 6))}, nil
	case "month", "this-month":
		start, end := worktime.MonthRange(now, loc)
		return Period{Label: start.Format("January 2006"), Start: start, End: end}, nil
	case "last-month":
		start, end := worktime.MonthRange(worktime.MonthStart(now, loc).AddDate(0, 0, -1), loc)
		return Period{Label: start.Format("January 2006"), Start: start, End: end}, nil
	}

	if day, err := parseDateFormat(input, loc); err == nil {
		return Period{Label: day.Format("02/01/2006"), Start: day, End: endOfDay(day)}, nil
	} else if dateRegex.MatchString(input) {
		return Period{}, err
	}

	if monthRegex.MatchString(input) {
		month, err := ParseMonth(input, loc)
		if err != nil {
			return Period{}, err
		}
		start, end := worktime.MonthRange(month, loc)
		return Period{Label: start.Format("January 2006"), Start: start, End: end}, nil
	}

	if p, err := parseRelative(input, today); err == nil {
		return p, nil
	} else if relativeRegex.MatchString(input) {
		return Period{}, err
	}

	return Period{}, fmt.Errorf("invalid period %q. Use: today, yesterday, week, last-week, month, last-month, dd/mm/yyyy, yyyy-mm, or X days", input)
}

// ParseMonth parses "yyyy-mm" into midnight of the first day of that month
func ParseMonth(input string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	matches := monthRegex.FindStringSubmatch(strings.TrimSpace(input))
	if len(matches) != 3 {
		return time.Time{}, fmt.Errorf("invalid month %q, expected yyyy-mm", input)
	}

	year, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return time.Time{}, fmt.Errorf("year must be between 2000 and 2100")
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc), nil
}

// parseDateFormat parses dd/mm/yyyy into midnight of that day
func parseDateFormat(input string, loc *time.Location) (time.Time, error) {
	matches := dateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return time.Time{}, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("day must be between 1 and 31")
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return time.Time{}, fmt.Errorf("year must be between 2000 and 2100")
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// Rejects 31/02 and friends
	if date.Day() != day || date.Month() != time.Month(month) {
		return time.Time{}, fmt.Errorf("invalid date")
	}
	return date, nil
}

// parseRelative parses "X days" or "X weeks" as the range ending today
func parseRelative(input string, today time.Time) (Period, error) {
	matches := relativeRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return Period{}, fmt.Errorf("invalid relative period")
	}

	amount, _ := strconv.Atoi(matches[1])
	days := amount
	if strings.HasPrefix(matches[2], "week") {
		days = amount * 7
	}
	if days < 1 || days > 366 {
		return Period{}, fmt.Errorf("period must be between 1 and 366 days")
	}

	start := today.AddDate(0, 0, -(days - 1))
	return Period{
		Label: fmt.Sprintf("Last %d days", days),
		Start: start,
		End:   today.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}, nil
}

// ParseClock parses a "HH:MM" wall-clock time as that time on now's day
// in loc
func ParseClock(input string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	minutes, err := worktime.ParseWallClock(strings.TrimSpace(input))
	if err != nil {
		return time.Time{}, err
	}
	return worktime.DayStart(now, loc).Add(time.Duration(minutes) * time.Minute), nil
}
