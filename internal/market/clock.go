package market

import (
	"time"

	"nyseclock/internal/domain"
)

// sessionSpec is the local wall-clock time of a boundary.
type sessionSpec struct {
	label  domain.BoundaryLabel
	hour   int
	minute int
	status domain.Status
}

// Regular NYSE day: premarket 07:00, open 09:30, close 16:00, aftermarket
// ends 20:00.
var sessionSpecs = [4]sessionSpec{
	{domain.LabelPremarketOpen, 7, 0, domain.StatusPremarket},
	{domain.LabelMarketOpen, 9, 30, domain.StatusOpen},
	{domain.LabelMarketClose, 16, 0, domain.StatusAftermarket},
	{domain.LabelAftermarketClose, 20, 0, domain.StatusClosed},
}

// anchorHourUTC is never a date boundary in New York, whose UTC offset is
// always -4h or -5h.
const anchorHourUTC = 12

// SessionClock maps NYSE civil dates to absolute session boundary instants.
type SessionClock struct {
	zone Zone
}

// NewSessionClock creates a SessionClock that reads NYSE wall-clock time from
// zone.
func NewSessionClock(zone Zone) *SessionClock {
	return &SessionClock{zone: zone}
}

// Offset returns the number of hours NYSE local time is behind UTC on date
// (5 under EST, 4 under EDT).
func (c *SessionClock) Offset(date domain.Date) int {
	ref := time.Date(date.Year, date.Month, date.Day, anchorHourUTC, 0, 0, 0, time.UTC)
	return anchorHourUTC - c.zone.Local(ref).Hour
}

// Boundaries returns the four session boundaries of date in ascending order.
// The offset is derived per date because it changes across DST transitions.
func (c *SessionClock) Boundaries(date domain.Date) [4]domain.SessionBoundary {
	offset := c.Offset(date)

	var out [4]domain.SessionBoundary
	for i, s := range sessionSpecs {
		out[i] = domain.SessionBoundary{
			Label:  s.label,
			At:     time.Date(date.Year, date.Month, date.Day, s.hour+offset, s.minute, 0, 0, time.UTC),
			Status: s.status,
		}
	}
	return out
}

// DateOf returns the NYSE civil date of instant t.
func (c *SessionClock) DateOf(t time.Time) domain.Date {
	return c.zone.Local(t).Date()
}
