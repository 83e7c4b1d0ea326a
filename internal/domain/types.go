// Package domain defines the core value types shared across nyseclock:
// market statuses, session boundaries, civil dates and holiday records.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Enums
// ---------------------------------------------------------------------------

// Status is the trading status of the exchange at a given instant.
type Status string

const (
	StatusPremarket   Status = "Premarket"
	StatusOpen        Status = "Open"
	StatusAftermarket Status = "Aftermarket"
	StatusClosed      Status = "Closed"
)

// BoundaryLabel names one of the four daily session transitions.
type BoundaryLabel string

const (
	LabelPremarketOpen    BoundaryLabel = "Premarket Opens"
	LabelMarketOpen       BoundaryLabel = "Market Opens"
	LabelMarketClose      BoundaryLabel = "Market Closes"
	LabelAftermarketClose BoundaryLabel = "Aftermarket Closes"
)

// ErrUnknownLabel is returned when a boundary label cannot be parsed.
var ErrUnknownLabel = errors.New("unknown session boundary label")

// ParseBoundaryLabel validates a stored or transmitted label.
func ParseBoundaryLabel(s string) (BoundaryLabel, error) {
	switch l := BoundaryLabel(s); l {
	case LabelPremarketOpen, LabelMarketOpen, LabelMarketClose, LabelAftermarketClose:
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

// CalendarState reports whether holiday data backs the trading-day verdicts.
type CalendarState string

const (
	CalendarUnpopulated CalendarState = "unpopulated"
	CalendarReady       CalendarState = "ready"
	// CalendarDegraded means the holiday feed failed; only weekends are
	// recognised as non-trading days.
	CalendarDegraded CalendarState = "degraded"
)

// ReasonWeekend is the non-trading reason reported for Saturdays and Sundays.
const ReasonWeekend = "Weekend"

// ---------------------------------------------------------------------------
// Calendar types
// ---------------------------------------------------------------------------

// Date is a civil calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the civil date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a "2006-01-02" formatted date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// AddDays returns the date n days after d, normalising month and year
// overflow.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

// Weekday returns the day of the week of the civil date. A civil date has the
// same weekday in every timezone.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

// IsWeekend reports whether d falls on a Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// String formats the date as YYYY-MM-DD, the key used by holiday sets.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Holiday is a named non-trading date.
type Holiday struct {
	Date Date
	Name string
}

// Verdict classifies a calendar date. Exactly one of Trading and a non-empty
// Reason holds.
type Verdict struct {
	Trading bool
	Reason  string
}

// ---------------------------------------------------------------------------
// Session types
// ---------------------------------------------------------------------------

// SessionBoundary is one status transition instant of a trading day.
type SessionBoundary struct {
	Label BoundaryLabel
	// At is the absolute instant of the transition, in UTC.
	At time.Time
	// Status becomes active at (and after) At.
	Status Status
}

// UpcomingEvent is a SessionBoundary anchored to its NYSE calendar date.
type UpcomingEvent struct {
	SessionBoundary
	Date Date
}

// Until returns the time remaining from now until the event. It is never
// negative.
func (e UpcomingEvent) Until(now time.Time) time.Duration {
	d := e.At.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Snapshot is everything a display surface needs for one instant.
type Snapshot struct {
	Now    time.Time
	Status Status
	// Reason is set only when the whole day is a non-trading day.
	Reason string
	// ClosedForDay is true when Status is Closed because of a weekend or
	// holiday, false when the market is merely closed for the night.
	ClosedForDay  bool
	Upcoming      []UpcomingEvent
	CalendarState CalendarState
}

// Degraded reports whether the snapshot was computed without holiday data.
func (s Snapshot) Degraded() bool {
	return s.CalendarState != CalendarReady
}

// Transition records an observed change of status.
type Transition struct {
	ID     int64
	At     time.Time
	From   Status
	To     Status
	Reason string
}
