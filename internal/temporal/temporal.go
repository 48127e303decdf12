package temporal

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidDate reports a calendar combination that does not exist,
	// such as day 31 of a 30-day month. It is never silently clamped.
	ErrInvalidDate = errors.New("invalid calendar date")

	// ErrNoExpression reports that the text contains no recognizable
	// temporal expression at all.
	ErrNoExpression = errors.New("no temporal expression found")
)

// DefaultHour is the hour of day substituted when text carries a date but
// no time of day.
const DefaultHour = 9

// ClockTime is a resolved time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// Date is a resolved calendar date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate validates the combination before constructing the value.
func NewDate(year int, month time.Month, day int) (Date, error) {
	if month < time.January || month > time.December {
		return Date{}, fmt.Errorf("%w: month %d", ErrInvalidDate, int(month))
	}
	if day < 1 || day > daysIn(year, month) {
		return Date{}, fmt.Errorf("%w: day %d of %s %d", ErrInvalidDate, day, month, year)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Expression is the intermediate result of extraction: either component may
// be absent, and the caller composes the missing parts from documented
// defaults. It is never persisted.
type Expression struct {
	Text     string
	Language string
	Time     *ClockTime
	Date     *Date
}
