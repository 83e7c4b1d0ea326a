package market

import (
	"log/slog"
	"time"

	"nyseclock/internal/domain"
)

const (
	// DefaultLookahead is the number of upcoming events a display shows.
	DefaultLookahead = 2
	// scanHorizonDays bounds the forward scan; no NYSE holiday cluster comes
	// close to two weeks.
	scanHorizonDays = 14
)

// Scanner finds the next session boundaries after an instant.
type Scanner struct {
	days  TradingDays
	clock *SessionClock
	log   *slog.Logger
}

// NewScanner creates a Scanner over the given calendar and clock.
func NewScanner(days TradingDays, clock *SessionClock, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{days: days, clock: clock, log: log}
}

// Upcoming returns at most limit boundaries strictly after now, in ascending
// order. It walks forward from the NYSE date of now, skipping non-trading
// days, for at most two weeks. A limit of zero or less means
// DefaultLookahead.
func (s *Scanner) Upcoming(now time.Time, limit int) []domain.UpcomingEvent {
	if limit <= 0 {
		limit = DefaultLookahead
	}

	var events []domain.UpcomingEvent
	date := s.clock.DateOf(now)
	for i := 0; i < scanHorizonDays && len(events) < limit; i++ {
		day := date.AddDays(i)
		if !s.days.Verdict(day).Trading {
			continue
		}
		for _, b := range s.clock.Boundaries(day) {
			if b.At.After(now) {
				events = append(events, domain.UpcomingEvent{SessionBoundary: b, Date: day})
			}
		}
	}

	if len(events) < limit {
		s.log.Warn("lookahead horizon exhausted", "now", now, "found", len(events), "limit", limit)
	}
	if len(events) > limit {
		events = events[:limit]
	}
	return events
}
