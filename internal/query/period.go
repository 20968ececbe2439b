package query

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrBadPeriod is returned when a period label cannot be parsed.
var ErrBadPeriod = errors.New("query: bad period")

const (
	yearLayout  = "2006"
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

type periodKind int

const (
	periodMonth periodKind = iota
	periodRange
	periodYear
)

// Period is an excluded time span with inclusive bounds. Its label is
// "YYYY" for a calendar year, "YYYY-MM" for a calendar month and
// "YYYY-MM-DD/YYYY-MM-DD" for a range of days.
type Period struct {
	Start time.Time
	End   time.Time
	kind  periodKind
}

// MonthPeriod covers a whole calendar month.
func MonthPeriod(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: endOfDay(start.AddDate(0, 1, -1)), kind: periodMonth}
}

// YearPeriod covers a whole calendar year.
func YearPeriod(year int) Period {
	return Period{Start: yearStart(year), End: yearEnd(year), kind: periodYear}
}

// RangePeriod covers the days from through to.
func RangePeriod(from, to time.Time) Period {
	return Period{Start: startOfDay(from), End: endOfDay(to), kind: periodRange}
}

// ParsePeriod parses a label produced by Period.String.
func ParsePeriod(label string) (Period, error) {
	if from, to, ok := strings.Cut(label, "/"); ok {
		start, err := time.Parse(dayLayout, from)
		if err != nil {
			return Period{}, fmt.Errorf("%w: %q", ErrBadPeriod, label)
		}
		end, err := time.Parse(dayLayout, to)
		if err != nil || end.Before(start) {
			return Period{}, fmt.Errorf("%w: %q", ErrBadPeriod, label)
		}
		return RangePeriod(start, end), nil
	}
	if len(label) == len(yearLayout) {
		year, err := time.Parse(yearLayout, label)
		if err != nil {
			return Period{}, fmt.Errorf("%w: %q", ErrBadPeriod, label)
		}
		return YearPeriod(year.Year()), nil
	}
	month, err := time.Parse(monthLayout, label)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrBadPeriod, label)
	}
	return MonthPeriod(month.Year(), month.Month()), nil
}

// Contains reports whether t falls inside the period, bounds included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Overlaps reports whether p intersects [start, end].
func (p Period) Overlaps(start, end time.Time) bool {
	return !p.End.Before(start) && !p.Start.After(end)
}

func (p Period) String() string {
	switch p.kind {
	case periodYear:
		return p.Start.Format(yearLayout)
	case periodMonth:
		return p.Start.Format(monthLayout)
	}
	return p.Start.Format(dayLayout) + "/" + p.End.Format(dayLayout)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// endOfDay is the last microsecond of the day.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999000, time.UTC)
}
