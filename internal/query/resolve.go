package query

import (
	"slices"
	"time"
)

// Window is the outcome of resolving date conditions.
type Window struct {
	Start    *time.Time
	End      *time.Time
	Excluded []Period
}

// Resolve folds conditions into one window: the latest lower bound and the
// earliest upper bound win, so the result does not depend on order. Month
// exclusions without a year expand to one period per year of the window and
// are dropped unless both bounds are known.
func Resolve(conds []DateCondition) Window {
	var w Window
	var everyYear []time.Month
	for _, c := range conds {
		var lo, hi *time.Time
		switch c := c.(type) {
		case ExactDate:
			lo, hi = ptr(startOfDay(c.Date)), ptr(endOfDay(c.Date))
		case DateRange:
			lo, hi = ptr(startOfDay(c.From)), ptr(endOfDay(c.To))
		case AfterDate:
			lo = ptr(startOfDay(c.Date))
		case AfterYear:
			lo = ptr(yearStart(c.Year))
		case BeforeDate:
			hi = ptr(startOfDay(c.Date).Add(-time.Microsecond))
		case BeforeYear:
			hi = ptr(yearEnd(c.Year - 1))
		case InYear:
			lo, hi = ptr(yearStart(c.Year)), ptr(yearEnd(c.Year))
		case YearRange:
			lo, hi = ptr(yearStart(c.From)), ptr(yearEnd(c.To))
		case MonthYear:
			p := MonthPeriod(c.Year, c.Month)
			lo, hi = ptr(p.Start), ptr(p.End)
		case ExcludeMonth:
			if c.Year == 0 {
				everyYear = append(everyYear, c.Month)
			} else {
				w.Excluded = append(w.Excluded, MonthPeriod(c.Year, c.Month))
			}
		case ExcludePeriod:
			w.Excluded = append(w.Excluded, RangePeriod(c.From, c.To))
		}
		if lo != nil && (w.Start == nil || lo.After(*w.Start)) {
			w.Start = lo
		}
		if hi != nil && (w.End == nil || hi.Before(*w.End)) {
			w.End = hi
		}
	}
	if w.Start != nil && w.End != nil {
		for _, m := range everyYear {
			for y := w.Start.Year(); y <= w.End.Year(); y++ {
				if p := MonthPeriod(y, m); p.Overlaps(*w.Start, *w.End) {
					w.Excluded = append(w.Excluded, p)
				}
			}
		}
	}
	slices.SortFunc(w.Excluded, comparePeriods)
	w.Excluded = slices.CompactFunc(w.Excluded, func(a, b Period) bool {
		return comparePeriods(a, b) == 0
	})
	if len(w.Excluded) == 0 {
		w.Excluded = nil
	}
	return w
}

func comparePeriods(a, b Period) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	if c := a.End.Compare(b.End); c != 0 {
		return c
	}
	return int(a.kind) - int(b.kind)
}

func yearStart(y int) time.Time {
	return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func yearEnd(y int) time.Time {
	return endOfDay(time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC))
}

func ptr(t time.Time) *time.Time { return &t }
