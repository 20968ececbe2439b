package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

const (
	minYear = 1900
	maxYear = 2100
)

// dateRule turns a match of re into a condition. ok is false when the
// captured date is not a real calendar date.
type dateRule struct {
	re    *regexp2.Regexp
	build func(m *regexp2.Match) (cond DateCondition, ok bool)
}

func rangeOfTextDates(m *regexp2.Match) (DateCondition, bool) {
	from, ok1 := textDate(groups(m, 1, 2, 3))
	to, ok2 := textDate(groups(m, 4, 5, 6))
	return DateRange{From: from, To: to}, ok1 && ok2
}

func rangeOfSlashDates(m *regexp2.Match) (DateCondition, bool) {
	from, ok1 := parseSlashDate(groupText(m, 1))
	to, ok2 := parseSlashDate(groupText(m, 2))
	return DateRange{From: from, To: to}, ok1 && ok2
}

func afterTextDate(m *regexp2.Match) (DateCondition, bool) {
	d, ok := textDate(groups(m, 1, 2, 3))
	return AfterDate{Date: d}, ok
}

func afterSlashDate(m *regexp2.Match) (DateCondition, bool) {
	d, ok := parseSlashDate(groupText(m, 1))
	return AfterDate{Date: d}, ok
}

func afterMonthOrYear(m *regexp2.Match) (DateCondition, bool) {
	month, year := groupText(m, 1), groupText(m, 2)
	if month != "" {
		d, ok := textDate("1", month, year)
		return AfterDate{Date: d}, ok
	}
	y, ok := parseYear(year)
	return AfterYear{Year: y}, ok
}

func beforeTextDate(m *regexp2.Match) (DateCondition, bool) {
	d, ok := textDate(groups(m, 1, 2, 3))
	return BeforeDate{Date: d}, ok
}

func beforeSlashDate(m *regexp2.Match) (DateCondition, bool) {
	d, ok := parseSlashDate(groupText(m, 1))
	return BeforeDate{Date: d}, ok
}

func beforeMonthOrYear(m *regexp2.Match) (DateCondition, bool) {
	month, year := groupText(m, 1), groupText(m, 2)
	if month != "" {
		d, ok := textDate("1", month, year)
		return BeforeDate{Date: d}, ok
	}
	y, ok := parseYear(year)
	return BeforeYear{Year: y}, ok
}

func exactTextDate(m *regexp2.Match) (DateCondition, bool) {
	d, ok := textDate(groups(m, 1, 2, 3))
	return ExactDate{Date: d}, ok
}

func yearRange(m *regexp2.Match) (DateCondition, bool) {
	from, ok1 := parseYear(groupText(m, 1))
	to, ok2 := parseYear(groupText(m, 2))
	return YearRange{From: from, To: to}, ok1 && ok2
}

func monthOfYear(m *regexp2.Match) (DateCondition, bool) {
	month, ok1 := monthByName(apostrophes.Replace(groupText(m, 1)))
	year, ok2 := parseYear(groupText(m, 2))
	return MonthYear{Month: month, Year: year}, ok1 && ok2
}

// textDate builds a date from a day number, a French month name and a
// year. A missing day or month defaults to the first.
func textDate(day, month, year string) (time.Time, bool) {
	y, ok := parseYear(year)
	if !ok {
		return time.Time{}, false
	}
	mo := time.January
	if month != "" {
		if mo, ok = monthByName(apostrophes.Replace(month)); !ok {
			mo = time.January
		}
	}
	d := 1
	if day != "" {
		var err error
		if d, err = strconv.Atoi(day); err != nil {
			return time.Time{}, false
		}
	}
	return civilDate(y, mo, d)
}

// parseSlashDate reads a day-first dd/mm/yyyy date.
func parseSlashDate(s string) (time.Time, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	d, err1 := strconv.Atoi(parts[0])
	mo, err2 := strconv.Atoi(parts[1])
	y, ok := parseYear(parts[2])
	if err1 != nil || err2 != nil || !ok || mo < 1 || mo > 12 {
		return time.Time{}, false
	}
	return civilDate(y, time.Month(mo), d)
}

func parseYear(s string) (int, bool) {
	y, err := strconv.Atoi(s)
	if err != nil || y < minYear || y > maxYear {
		return 0, false
	}
	return y, true
}

// civilDate rejects days that do not exist, such as February 30th.
func civilDate(y int, m time.Month, d int) (time.Time, bool) {
	if d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Month() != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func groupText(m *regexp2.Match, i int) string {
	s, _ := group(m, i)
	return s
}

func groups(m *regexp2.Match, a, b, c int) (string, string, string) {
	return groupText(m, a), groupText(m, b), groupText(m, c)
}
