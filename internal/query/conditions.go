package query

import (
	"fmt"
	"time"
)

// DateCondition is one temporal constraint extracted from a question.
// Resolve folds a list of them into a date window and excluded periods.
type DateCondition interface {
	fmt.Stringer
	// years lists the calendar years the condition selects. Exclusions
	// select nothing.
	years() []int
}

// ExactDate matches one calendar day.
type ExactDate struct{ Date time.Time }

// DateRange matches From through the end of To.
type DateRange struct{ From, To time.Time }

// AfterDate matches from Date onwards.
type AfterDate struct{ Date time.Time }

// AfterYear matches from January 1st of Year onwards.
type AfterYear struct{ Year int }

// BeforeDate matches anything strictly before Date.
type BeforeDate struct{ Date time.Time }

// BeforeYear matches anything strictly before January 1st of Year.
type BeforeYear struct{ Year int }

// InYear matches one calendar year.
type InYear struct{ Year int }

// YearRange matches January 1st of From through December 31st of To.
type YearRange struct{ From, To int }

// MonthYear matches one calendar month.
type MonthYear struct {
	Month time.Month
	Year  int
}

// ExcludeMonth removes a month from the results. A zero Year removes that
// month in every year of the resolved window.
type ExcludeMonth struct {
	Month time.Month
	Year  int
}

// ExcludePeriod removes the days From through To.
type ExcludePeriod struct{ From, To time.Time }

func (c ExactDate) years() []int     { return []int{c.Date.Year()} }
func (c DateRange) years() []int     { return []int{c.From.Year(), c.To.Year()} }
func (c AfterDate) years() []int     { return []int{c.Date.Year()} }
func (c AfterYear) years() []int     { return []int{c.Year} }
func (c BeforeDate) years() []int    { return []int{c.Date.Year()} }
func (c BeforeYear) years() []int    { return []int{c.Year} }
func (c InYear) years() []int        { return []int{c.Year} }
func (c YearRange) years() []int     { return []int{c.From, c.To} }
func (c MonthYear) years() []int     { return []int{c.Year} }
func (c ExcludeMonth) years() []int  { return nil }
func (c ExcludePeriod) years() []int { return nil }

func (c ExactDate) String() string { return "exact " + c.Date.Format(dayLayout) }
func (c DateRange) String() string {
	return "range " + c.From.Format(dayLayout) + ".." + c.To.Format(dayLayout)
}
func (c AfterDate) String() string  { return "after " + c.Date.Format(dayLayout) }
func (c AfterYear) String() string  { return fmt.Sprintf("after_year %d", c.Year) }
func (c BeforeDate) String() string { return "before " + c.Date.Format(dayLayout) }
func (c BeforeYear) String() string { return fmt.Sprintf("before_year %d", c.Year) }
func (c InYear) String() string     { return fmt.Sprintf("year %d", c.Year) }
func (c YearRange) String() string  { return fmt.Sprintf("year_range %d..%d", c.From, c.To) }
func (c MonthYear) String() string  { return fmt.Sprintf("month_year %d-%02d", c.Year, int(c.Month)) }
func (c ExcludeMonth) String() string {
	if c.Year == 0 {
		return fmt.Sprintf("exclude_month %02d", int(c.Month))
	}
	return fmt.Sprintf("exclude_month %d-%02d", c.Year, int(c.Month))
}
func (c ExcludePeriod) String() string {
	return "exclude_period " + c.From.Format(dayLayout) + ".." + c.To.Format(dayLayout)
}
