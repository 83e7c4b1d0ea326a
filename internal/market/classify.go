package market

import (
	"time"

	"nyseclock/internal/domain"
)

// TradingDays answers whether a civil date is a trading day.
type TradingDays interface {
	Verdict(date domain.Date) domain.Verdict
}

// Classifier determines the market status at an instant.
type Classifier struct {
	days  TradingDays
	clock *SessionClock
}

// NewClassifier creates a Classifier over the given calendar and clock.
func NewClassifier(days TradingDays, clock *SessionClock) *Classifier {
	return &Classifier{days: days, clock: clock}
}

// Classify returns the status at now. The reason is non-empty only when the
// NYSE calendar date of now is not a trading day; a trading day outside its
// session hours is Closed with no reason. Boundaries are inclusive lower
// bounds: at the exact boundary instant the later status applies.
func (c *Classifier) Classify(now time.Time) (domain.Status, string) {
	date := c.clock.DateOf(now)
	if v := c.days.Verdict(date); !v.Trading {
		return domain.StatusClosed, v.Reason
	}

	b := c.clock.Boundaries(date)
	switch {
	case !now.Before(b[3].At) || now.Before(b[0].At):
		return domain.StatusClosed, ""
	case !now.Before(b[2].At):
		return domain.StatusAftermarket, ""
	case !now.Before(b[1].At):
		return domain.StatusOpen, ""
	default:
		return domain.StatusPremarket, ""
	}
}
