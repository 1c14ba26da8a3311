package order

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidDateRange = errors.New("invalid date range")

// DateRange is an inclusive window covering whole calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// DaysBetween builds the window from 00:00:00.000 of start's calendar day to
// 23:59:59.999 of end's calendar day, both read in loc.
func DaysBetween(start, end time.Time, loc *time.Location) DateRange {
	s := start.In(loc)
	e := end.In(loc)
	return DateRange{
		From: time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc),
		To:   time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, int(999*time.Millisecond), loc),
	}
}

func Day(t time.Time, loc *time.Location) DateRange {
	return DaysBetween(t, t, loc)
}

func Month(t time.Time, loc *time.Location) DateRange {
	t = t.In(loc)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	return DaysBetween(first, last, loc)
}

// ParseDateRange parses two YYYY-MM-DD calendar dates in loc.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if start == "" || end == "" {
		return DateRange{}, fmt.Errorf("%w: start and end are required", ErrInvalidDateRange)
	}
	s, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start: %v", ErrInvalidDateRange, err)
	}
	e, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end: %v", ErrInvalidDateRange, err)
	}
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("%w: end is before start", ErrInvalidDateRange)
	}
	return DaysBetween(s, e, loc), nil
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}
