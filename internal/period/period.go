// Package period turns symbolic report periods into half-open UTC timestamp ranges.
package period

import (
	"errors"
	"time"
)

var ErrInvalidPeriod = errors.New("invalid period")

// Name is a symbolic report period.
type Name string

const (
	Week        Name = "week"
	LastWeek    Name = "last_week"
	Month       Name = "month"
	LastMonth   Name = "last_month"
	Quarter     Name = "quarter"
	LastQuarter Name = "last_quarter"
	Year        Name = "year"
	LastYear    Name = "last_year"
)

// Names lists every supported period in display order.
var Names = []Name{Week, LastWeek, Month, LastMonth, Quarter, LastQuarter, Year, LastYear}

// Range is the half-open interval [From, To) in unix seconds.
type Range struct {
	From int64
	To   int64
}

// Contains reports whether ts falls inside the range.
func (r Range) Contains(ts int64) bool {
	return ts >= r.From && ts < r.To
}

// Resolve returns the range of the named period around today. Both bounds are UTC midnights.
func Resolve(name string, today time.Time) (Range, error) {
	start, end, err := bounds(Name(name), midnight(today))
	if err != nil {
		return Range{}, err
	}

	return Range{From: start.Unix(), To: end.Unix()}, nil
}

func bounds(name Name, day time.Time) (time.Time, time.Time, error) {
	switch name {
	case Week, LastWeek:
		// ISO weeks start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)

		if name == LastWeek {
			start = start.AddDate(0, 0, -7)
		}

		return start, start.AddDate(0, 0, 7), nil
	case Month, LastMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)

		if name == LastMonth {
			start = start.AddDate(0, -1, 0)
		}

		return start, start.AddDate(0, 1, 0), nil
	case Quarter, LastQuarter:
		firstMonth := time.Month((int(day.Month())-1)/3*3 + 1)
		start := time.Date(day.Year(), firstMonth, 1, 0, 0, 0, 0, time.UTC)

		if name == LastQuarter {
			start = start.AddDate(0, -3, 0)
		}

		return start, start.AddDate(0, 3, 0), nil
	case Year, LastYear:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

		if name == LastYear {
			start = start.AddDate(-1, 0, 0)
		}

		return start, start.AddDate(1, 0, 0), nil
	}

	return time.Time{}, time.Time{}, ErrInvalidPeriod
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
