package market

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"nyseclock/internal/domain"
)

// HolidaySource fetches the published public holidays of one year.
type HolidaySource interface {
	Fetch(ctx context.Context, year int) ([]domain.Holiday, error)
}

// Holiday names the NYSE closes for.
const (
	HolidayNewYear      = "New Year's Day"
	HolidayMLK          = "Martin Luther King, Jr.'s Birthday"
	HolidayWashington   = "Washington's Birthday"
	HolidayGoodFriday   = "Good Friday"
	HolidayMemorial     = "Memorial Day"
	HolidayJuneteenth   = "Juneteenth"
	HolidayIndependence = "Independence Day"
	HolidayLabor        = "Labor Day"
	HolidayThanksgiving = "Thanksgiving Day"
	HolidayChristmas    = "Christmas Day"
)

// observedHolidays maps every accepted feed name to its display name. The
// first ten entries are the allow-list itself; the rest are spellings used by
// public holiday feeds for the same days.
var observedHolidays = map[string]string{
	HolidayNewYear:      HolidayNewYear,
	HolidayMLK:          HolidayMLK,
	HolidayWashington:   HolidayWashington,
	HolidayGoodFriday:   HolidayGoodFriday,
	HolidayMemorial:     HolidayMemorial,
	HolidayJuneteenth:   HolidayJuneteenth,
	HolidayIndependence: HolidayIndependence,
	HolidayLabor:        HolidayLabor,
	HolidayThanksgiving: HolidayThanksgiving,
	HolidayChristmas:    HolidayChristmas,

	"Martin Luther King, Jr. Day":          HolidayMLK,
	"Presidents Day":                       HolidayWashington,
	"Presidents' Day":                      HolidayWashington,
	"Juneteenth National Independence Day": HolidayJuneteenth,
}

// ObservedName returns the display name of a published holiday, or false when
// the NYSE does not close for it.
func ObservedName(published string) (string, bool) {
	name, ok := observedHolidays[published]
	return name, ok
}

type holidaySet map[string]string

// CalendarConfig configures a HolidayCalendar.
type CalendarConfig struct {
	Source HolidaySource
	Zone   Zone
	// Timeout bounds a whole Populate call. Zero means no internal timeout.
	Timeout time.Duration
	// Now defaults to time.Now; it decides which two years are loaded.
	Now    func() time.Time
	Logger *slog.Logger
}

// HolidayCalendar holds the NYSE non-trading dates of the current and next
// year. It is populated at most once and is read-only afterwards, so lookups
// never lock.
type HolidayCalendar struct {
	source  HolidaySource
	zone    Zone
	timeout time.Duration
	now     func() time.Time
	log     *slog.Logger

	mu      sync.Mutex // serialises Populate
	set     atomic.Pointer[holidaySet]
	lastErr atomic.Pointer[DataSourceError]
}

// NewHolidayCalendar creates an empty calendar. Until Populate succeeds only
// weekends are non-trading days.
func NewHolidayCalendar(cfg CalendarConfig) *HolidayCalendar {
	c := &HolidayCalendar{
		source:  cfg.Source,
		zone:    cfg.Zone,
		timeout: cfg.Timeout,
		now:     cfg.Now,
		log:     cfg.Logger,
	}
	if c.zone == nil {
		c.zone = MustNYSEZone()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// NewSeededCalendar returns a ready calendar holding the given holidays
// without contacting any source.
func NewSeededCalendar(holidays []domain.Holiday) *HolidayCalendar {
	c := NewHolidayCalendar(CalendarConfig{})
	set := make(holidaySet, len(holidays))
	for _, h := range holidays {
		addHoliday(set, h.Date, h.Name)
	}
	c.set.Store(&set)
	return c
}

// Populate loads the current and next NYSE year from the source. Both years
// are requested concurrently; the first failure aborts the load and is
// returned as a *DataSourceError. Calling Populate after a successful load is
// a no-op.
func (c *HolidayCalendar) Populate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.set.Load() != nil {
		return nil
	}
	if c.source == nil {
		err := &DataSourceError{Err: fmt.Errorf("no holiday source configured")}
		c.lastErr.Store(err)
		return err
	}

	year := c.zone.Local(c.now()).Year
	years := []int{year, year + 1}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.log.Info("fetching holidays", "years", years)

	results := make([][]domain.Holiday, len(years))
	g, gctx := errgroup.WithContext(ctx)
	for i, y := range years {
		g.Go(func() error {
			hs, err := c.source.Fetch(gctx, y)
			if err != nil {
				return fmt.Errorf("year %d: %w", y, err)
			}
			results[i] = hs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		dsErr := &DataSourceError{Years: years, Err: err}
		c.lastErr.Store(dsErr)
		c.log.Error("could not initialize holidays, only weekends are non-trading", "error", err)
		return dsErr
	}

	set := make(holidaySet)
	for i, hs := range results {
		for _, h := range hs {
			// NYSE does not close on an observed date that falls in the
			// neighbouring year, e.g. Dec 31 for a Saturday New Year's Day.
			if h.Date.Year != years[i] {
				continue
			}
			name, ok := ObservedName(h.Name)
			if !ok {
				continue
			}
			addHoliday(set, h.Date, name)
		}
	}

	c.set.Store(&set)
	c.lastErr.Store(nil)
	c.log.Info("initialized NYSE holidays", "count", len(set))
	return nil
}

// addHoliday stores a holiday unless it falls on a weekend or the date already
// has a name.
func addHoliday(set holidaySet, d domain.Date, name string) {
	if d.IsWeekend() {
		return
	}
	key := d.String()
	if _, exists := set[key]; exists {
		return
	}
	set[key] = name
}

// Verdict classifies date. Weekends are checked first, independent of the
// holiday data.
func (c *HolidayCalendar) Verdict(date domain.Date) domain.Verdict {
	if date.IsWeekend() {
		return domain.Verdict{Reason: domain.ReasonWeekend}
	}
	if set := c.set.Load(); set != nil {
		if name, ok := (*set)[date.String()]; ok {
			return domain.Verdict{Reason: name}
		}
	}
	return domain.Verdict{Trading: true}
}

// State reports whether holiday data is loaded.
func (c *HolidayCalendar) State() domain.CalendarState {
	switch {
	case c.set.Load() != nil:
		return domain.CalendarReady
	case c.lastErr.Load() != nil:
		return domain.CalendarDegraded
	default:
		return domain.CalendarUnpopulated
	}
}

// Err returns the error of the last failed Populate, or nil.
func (c *HolidayCalendar) Err() error {
	if err := c.lastErr.Load(); err != nil {
		return err
	}
	return nil
}

// Holidays returns the loaded holidays in date order.
func (c *HolidayCalendar) Holidays() []domain.Holiday {
	set := c.set.Load()
	if set == nil {
		return nil
	}
	out := make([]domain.Holiday, 0, len(*set))
	for key, name := range *set {
		d, err := domain.ParseDate(key)
		if err != nil {
			continue
		}
		out = append(out, domain.Holiday{Date: d, Name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
