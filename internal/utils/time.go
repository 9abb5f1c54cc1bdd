package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitd/internal/constants"
)

// Clock supplies the current instant and the calendar day it falls on.
type Clock interface {
	Now() time.Time
	Today() string
}

// SystemClock reads the wall clock in a configured IANA timezone.
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock returns a clock for the given timezone ("" or "Local" for the system zone)
func NewSystemClock(timezone string) (*SystemClock, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &SystemClock{loc: loc}, nil
}

func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *SystemClock) Today() string {
	return c.Now().Format(constants.DateFormat)
}

// FixedClock always reports the same instant. Tests advance it with Advance.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.T
}

func (c *FixedClock) Today() string {
	return c.T.Format(constants.DateFormat)
}

// Advance moves the clock forward by the given number of days
func (c *FixedClock) Advance(days int) {
	c.T = c.T.AddDate(0, 0, days)
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// ParseDay parses a YYYY-MM-DD calendar day
func ParseDay(day string) (time.Time, error) {
	return time.Parse(constants.DateFormat, day)
}

// AddDays shifts a YYYY-MM-DD calendar day by n days
func AddDays(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(constants.DateFormat), nil
}

// FormatTimestamp renders a timestamp the way it is persisted
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTimestamp parses a persisted timestamp
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
