package query

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func labels(ps []Period) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.String())
	}
	return out
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		conds    []DateCondition
		start    time.Time
		end      time.Time
		excluded []string
	}{
		{
			name:  "exact date spans the day",
			conds: []DateCondition{ExactDate{Date: day(2012, time.December, 1)}},
			start: day(2012, time.December, 1),
			end:   endOfDay(day(2012, time.December, 1)),
		},
		{
			name:  "year",
			conds: []DateCondition{InYear{Year: 2011}},
			start: day(2011, time.January, 1),
			end:   yearEnd(2011),
		},
		{
			name:  "leap february",
			conds: []DateCondition{MonthYear{Month: time.February, Year: 2012}},
			start: day(2012, time.February, 1),
			end:   endOfDay(day(2012, time.February, 29)),
		},
		{
			name:  "range ends at end of day",
			conds: []DateCondition{DateRange{From: day(2013, time.March, 3), To: day(2013, time.May, 4)}},
			start: day(2013, time.March, 3),
			end:   endOfDay(day(2013, time.May, 4)),
		},
		{
			name:  "intersection keeps the tightest bounds",
			conds: []DateCondition{YearRange{From: 2010, To: 2014}, AfterDate{Date: day(2012, time.July, 2)}, InYear{Year: 2012}},
			start: day(2012, time.July, 2),
			end:   yearEnd(2012),
		},
		{
			name:     "month without year expands over the window",
			conds:    []DateCondition{YearRange{From: 2012, To: 2013}, ExcludeMonth{Month: time.June}},
			start:    day(2012, time.January, 1),
			end:      yearEnd(2013),
			excluded: []string{"2012-06", "2013-06"},
		},
		{
			name:     "month without year keeps only overlapping months",
			conds:    []DateCondition{DateRange{From: day(2012, time.July, 1), To: day(2013, time.March, 31)}, ExcludeMonth{Month: time.June}},
			start:    day(2012, time.July, 1),
			end:      endOfDay(day(2013, time.March, 31)),
			excluded: nil,
		},
		{
			name:     "explicit exclusions are deduplicated and sorted",
			conds:    []DateCondition{ExcludeMonth{Month: time.June, Year: 2013}, ExcludePeriod{From: day(2012, time.May, 1), To: day(2012, time.May, 3)}, ExcludeMonth{Month: time.June, Year: 2013}},
			excluded: []string{"2012-05-01/2012-05-03", "2013-06"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Resolve(tt.conds)
			checkBound(t, "start", w.Start, tt.start)
			checkBound(t, "end", w.End, tt.end)
			if got := labels(w.Excluded); !reflect.DeepEqual(got, tt.excluded) {
				t.Errorf("excluded = %v, want %v", got, tt.excluded)
			}
		})
	}
}

func checkBound(t *testing.T, name string, got *time.Time, want time.Time) {
	t.Helper()
	switch {
	case want.IsZero() && got != nil:
		t.Errorf("%s = %v, want none", name, *got)
	case !want.IsZero() && got == nil:
		t.Errorf("%s = none, want %v", name, want)
	case got != nil && !got.Equal(want):
		t.Errorf("%s = %v, want %v", name, *got, want)
	}
}

func TestResolveOpenBounds(t *testing.T) {
	w := Resolve([]DateCondition{AfterYear{Year: 2012}})
	if w.End != nil {
		t.Errorf("End = %v, want none", w.End)
	}
	if w.Start == nil || !w.Start.Equal(day(2012, time.January, 1)) {
		t.Errorf("Start = %v, want 2012-01-01", w.Start)
	}

	w = Resolve([]DateCondition{BeforeYear{Year: 2012}})
	if w.Start != nil {
		t.Errorf("Start = %v, want none", w.Start)
	}
	if w.End == nil || !w.End.Equal(yearEnd(2011)) {
		t.Errorf("End = %v, want end of 2011", w.End)
	}

	w = Resolve([]DateCondition{BeforeDate{Date: day(2013, time.March, 15)}})
	if w.End == nil || !w.End.Before(day(2013, time.March, 15)) || w.End.Before(day(2013, time.March, 14)) {
		t.Errorf("End = %v, want just before 2013-03-15", w.End)
	}

	// Month exclusions need a closed window.
	w = Resolve([]DateCondition{AfterYear{Year: 2012}, ExcludeMonth{Month: time.June}})
	if len(w.Excluded) != 0 {
		t.Errorf("Excluded = %v, want none", labels(w.Excluded))
	}
}

func TestResolveOrderIndependent(t *testing.T) {
	conds := []DateCondition{
		InYear{Year: 2013},
		AfterDate{Date: day(2013, time.April, 10)},
		BeforeDate{Date: day(2013, time.October, 1)},
		ExcludeMonth{Month: time.June},
	}
	want := Resolve(conds)
	reversed := []DateCondition{conds[3], conds[2], conds[1], conds[0]}
	got := Resolve(reversed)
	if !got.Start.Equal(*want.Start) || !got.End.Equal(*want.End) {
		t.Errorf("window depends on order: %v..%v vs %v..%v", got.Start, got.End, want.Start, want.End)
	}
	if !reflect.DeepEqual(labels(got.Excluded), labels(want.Excluded)) {
		t.Errorf("excluded depends on order: %v vs %v", labels(got.Excluded), labels(want.Excluded))
	}
}

func TestResolveEmpty(t *testing.T) {
	w := Resolve(nil)
	if w.Start != nil || w.End != nil || w.Excluded != nil {
		t.Errorf("Resolve(nil) = %+v, want zero window", w)
	}
}

func TestPeriod(t *testing.T) {
	june := MonthPeriod(2013, time.June)
	tests := []struct {
		at   time.Time
		want bool
	}{
		{day(2013, time.June, 1), true},
		{endOfDay(day(2013, time.June, 30)), true},
		{day(2013, time.July, 1), false},
		{day(2013, time.May, 31), false},
	}
	for _, tt := range tests {
		if got := june.Contains(tt.at); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestYearPeriod(t *testing.T) {
	p, err := ParsePeriod("2013")
	if err != nil {
		t.Fatalf("ParsePeriod(2013): %v", err)
	}
	if !reflect.DeepEqual(p, YearPeriod(2013)) {
		t.Errorf("ParsePeriod(2013) = %+v, want %+v", p, YearPeriod(2013))
	}

	tests := []struct {
		t    time.Time
		want bool
	}{
		{time.Date(2013, time.January, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2013, time.December, 31, 23, 59, 59, 0, time.UTC), true},
		{time.Date(2012, time.December, 31, 23, 59, 59, 0, time.UTC), false},
		{time.Date(2014, time.January, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		if got := p.Contains(tt.t); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
	// a range over the same days keeps its own label
	if comparePeriods(YearPeriod(2013), RangePeriod(p.Start, p.End)) == 0 {
		t.Error("year and range periods compare equal")
	}
}

func TestParsePeriod(t *testing.T) {
	for _, label := range []string{"2013", "2013-06", "2012-05-01/2012-05-03"} {
		p, err := ParsePeriod(label)
		if err != nil {
			t.Fatalf("ParsePeriod(%q): %v", label, err)
		}
		if p.String() != label {
			t.Errorf("ParsePeriod(%q).String() = %q", label, p.String())
		}
	}
	for _, label := range []string{"", "13", "201x", "2013-13", "2012-05-03/2012-05-01", "june"} {
		if _, err := ParsePeriod(label); !errors.Is(err, ErrBadPeriod) {
			t.Errorf("ParsePeriod(%q) error = %v, want ErrBadPeriod", label, err)
		}
	}
}
