package util

import (
	"time"

	"nyseclock/internal/domain"
	"nyseclock/internal/market"
)

// nextScanLimit covers every boundary of a few trading days so that the
// requested label is found even across a long weekend.
const nextScanLimit = 12

// TradingCalendar answers simple market-hours questions for the NYSE.
type TradingCalendar struct {
	engine *market.Engine
}

// NewTradingCalendar creates a TradingCalendar backed by engine.
func NewTradingCalendar(engine *market.Engine) *TradingCalendar {
	return &TradingCalendar{engine: engine}
}

// IsMarketOpen returns whether the regular session is running at time t.
func (tc *TradingCalendar) IsMarketOpen(t time.Time) bool {
	status, _ := tc.engine.Classify(t)
	return status == domain.StatusOpen
}

// IsTradingDay reports whether the NYSE calendar date of t is a trading day.
func (tc *TradingCalendar) IsTradingDay(t time.Time) bool {
	return tc.engine.Verdict(tc.engine.Clock().DateOf(t)).Trading
}

// NextOpen returns the next regular-session open strictly after t, or the
// zero time if none is scheduled within the scan horizon.
func (tc *TradingCalendar) NextOpen(t time.Time) time.Time {
	return tc.next(t, domain.LabelMarketOpen)
}

// NextClose returns the next regular-session close strictly after t, or the
// zero time if none is scheduled within the scan horizon.
func (tc *TradingCalendar) NextClose(t time.Time) time.Time {
	return tc.next(t, domain.LabelMarketClose)
}

func (tc *TradingCalendar) next(t time.Time, label domain.BoundaryLabel) time.Time {
	for _, ev := range tc.engine.Upcoming(t, nextScanLimit) {
		if ev.Label == label {
			return ev.At
		}
	}
	return time.Time{}
}

// LatestFinishedTradingDay returns the most recent NYSE trading day whose
// extended session had ended by t. It returns false if none is found within
// two weeks.
func (tc *TradingCalendar) LatestFinishedTradingDay(t time.Time) (domain.Date, bool) {
	clock := tc.engine.Clock()
	day := clock.DateOf(t)
	for i := 0; i < 14; i++ {
		d := day.AddDays(-i)
		if !tc.engine.Verdict(d).Trading {
			continue
		}
		b := clock.Boundaries(d)
		if !t.Before(b[len(b)-1].At) {
			return d, true
		}
	}
	return domain.Date{}, false
}
