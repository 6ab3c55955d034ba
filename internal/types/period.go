// Package types implements special types for the Halfsies backend.
package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Period is the recurrence rule for a budget window.
type Period string

const (
	PeriodWeekly    Period = "weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// Periods returns all valid periods.
func Periods() []Period {
	return []Period{PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly}
}

// ParsePeriod parses a string into a Period. Parsing is case-insensitive.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%q is not a valid period", s)
	}

	return p, nil
}

// Valid reports whether the period is one of the known recurrence rules.
func (p Period) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}

	return false
}

func (p Period) String() string {
	return string(p)
}

// Window returns the period window containing the time instant.
//
// Weeks run Monday to Sunday, months and years follow the calendar and
// quarters are anchored to January, April, July and October. The end of the
// window is its last nanosecond, so a window contains every instant t with
// start <= t <= end.
func (p Period) Window(t time.Time) (start, end time.Time) {
	t = t.In(time.UTC)

	var next time.Time
	switch p {
	case PeriodWeekly:
		// Weekday returns Sunday as 0, shift so Monday starts the week
		offset := (int(t.Weekday()) + 6) % 7
		start = time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
		next = start.AddDate(0, 0, 7)
	case PeriodMonthly:
		start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		next = start.AddDate(0, 1, 0)
	case PeriodQuarterly:
		quarterStart := t.Month() - (t.Month()-1)%3
		start = time.Date(t.Year(), quarterStart, 1, 0, 0, 0, 0, time.UTC)
		next = start.AddDate(0, 3, 0)
	case PeriodYearly:
		start = time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		next = start.AddDate(1, 0, 0)
	}

	return start, next.Add(-time.Nanosecond)
}

// Next returns the window that starts the day after the given window end.
func (p Period) Next(end time.Time) (time.Time, time.Time) {
	return p.Window(end.Add(time.Nanosecond))
}

// Scan reads the value from the database.
func (p *Period) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*p = Period(v)
	case []byte:
		*p = Period(v)
	default:
		return fmt.Errorf("cannot scan %T into Period", value)
	}

	return nil
}

// Value returns the value for the SQL driver to write to the database.
func (p Period) Value() (driver.Value, error) {
	return string(p), nil
}

// GormDataType defines the data type used by gorm for the type.
func (Period) GormDataType() string {
	return "text"
}
