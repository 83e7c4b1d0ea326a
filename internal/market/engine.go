package market

import (
	"context"
	"log/slog"
	"time"

	"nyseclock/internal/domain"
)

// Engine bundles the holiday calendar, session clock, classifier and scanner
// behind a single value. All read methods are safe for concurrent use.
type Engine struct {
	calendar   *HolidayCalendar
	clock      *SessionClock
	classifier *Classifier
	scanner    *Scanner
	lookahead  int
}

// NewEngine wires an Engine. A lookahead of zero means DefaultLookahead.
func NewEngine(calendar *HolidayCalendar, zone Zone, lookahead int, log *slog.Logger) *Engine {
	if zone == nil {
		zone = MustNYSEZone()
	}
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	clock := NewSessionClock(zone)
	return &Engine{
		calendar:   calendar,
		clock:      clock,
		classifier: NewClassifier(calendar, clock),
		scanner:    NewScanner(calendar, clock, log),
		lookahead:  lookahead,
	}
}

// Populate loads holiday data; see HolidayCalendar.Populate.
func (e *Engine) Populate(ctx context.Context) error {
	return e.calendar.Populate(ctx)
}

// Calendar returns the engine's holiday calendar.
func (e *Engine) Calendar() *HolidayCalendar {
	return e.calendar
}

// Clock returns the engine's session clock.
func (e *Engine) Clock() *SessionClock {
	return e.clock
}

// Classify returns the status at now and the non-trading reason, if any.
func (e *Engine) Classify(now time.Time) (domain.Status, string) {
	return e.classifier.Classify(now)
}

// Upcoming returns the next limit session boundaries after now.
func (e *Engine) Upcoming(now time.Time, limit int) []domain.UpcomingEvent {
	return e.scanner.Upcoming(now, limit)
}

// Verdict classifies a single NYSE calendar date.
func (e *Engine) Verdict(date domain.Date) domain.Verdict {
	return e.calendar.Verdict(date)
}

// Snapshot computes status, reason and the default lookahead for now.
func (e *Engine) Snapshot(now time.Time) domain.Snapshot {
	status, reason := e.classifier.Classify(now)
	return domain.Snapshot{
		Now:           now,
		Status:        status,
		Reason:        reason,
		ClosedForDay:  reason != "",
		Upcoming:      e.scanner.Upcoming(now, e.lookahead),
		CalendarState: e.calendar.State(),
	}
}

// Schedule returns the session boundaries of every trading day in
// [from, from+days).
func (e *Engine) Schedule(from domain.Date, days int) []domain.UpcomingEvent {
	var out []domain.UpcomingEvent
	for i := 0; i < days; i++ {
		day := from.AddDays(i)
		if !e.calendar.Verdict(day).Trading {
			continue
		}
		for _, b := range e.clock.Boundaries(day) {
			out = append(out, domain.UpcomingEvent{SessionBoundary: b, Date: day})
		}
	}
	return out
}
