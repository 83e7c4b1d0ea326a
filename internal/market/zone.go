// Package market implements the NYSE session-state engine: the holiday
// calendar, the timezone-correct session clock, the status classifier and the
// lookahead scanner.
package market

import (
	"fmt"
	"time"
	_ "time/tzdata" // Embedded IANA database; the host may lack zoneinfo.

	"nyseclock/internal/domain"
)

// NYSETimezone is the IANA zone the exchange keeps its wall clock in.
const NYSETimezone = "America/New_York"

// LocalTime holds the wall-clock components of an instant in some zone.
type LocalTime struct {
	Year    int
	Month   time.Month
	Day     int
	Weekday time.Weekday
	Hour    int
}

// Date returns the civil date part of l.
func (l LocalTime) Date() domain.Date {
	return domain.Date{Year: l.Year, Month: l.Month, Day: l.Day}
}

// Zone answers "what does the wall clock read in this zone at instant t".
type Zone interface {
	Local(t time.Time) LocalTime
}

// LocationZone is a Zone backed by the IANA timezone database.
type LocationZone struct {
	loc *time.Location
}

// NewZone loads the named IANA zone.
func NewZone(name string) (*LocationZone, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading %s timezone: %w", name, err)
	}
	return &LocationZone{loc: loc}, nil
}

// MustNYSEZone returns the America/New_York zone. The database is embedded,
// so failure means a broken build.
func MustNYSEZone() *LocationZone {
	z, err := NewZone(NYSETimezone)
	if err != nil {
		panic(err)
	}
	return z
}

// Local implements Zone.
func (z *LocationZone) Local(t time.Time) LocalTime {
	lt := t.In(z.loc)
	y, m, d := lt.Date()
	return LocalTime{Year: y, Month: m, Day: d, Weekday: lt.Weekday(), Hour: lt.Hour()}
}

// Location returns the underlying *time.Location.
func (z *LocationZone) Location() *time.Location {
	return z.loc
}
