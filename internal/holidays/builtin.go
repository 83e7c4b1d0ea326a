package holidays

import (
	"context"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/aa"
	"github.com/rickar/cal/v2/us"

	"nyseclock/internal/domain"
	"nyseclock/internal/market"
)

var _ market.HolidaySource = (*BuiltinSource)(nil)

type rule struct {
	name    string
	holiday *cal.Holiday
}

// NYSE closes on the observed date of these holidays.
var nyseRules = []rule{
	{market.HolidayNewYear, us.NewYear},
	{market.HolidayMLK, us.MlkDay},
	{market.HolidayWashington, us.PresidentsDay},
	{market.HolidayGoodFriday, aa.GoodFriday},
	{market.HolidayMemorial, us.MemorialDay},
	{market.HolidayJuneteenth, us.Juneteenth},
	{market.HolidayIndependence, us.IndependenceDay},
	{market.HolidayLabor, us.LaborDay},
	{market.HolidayThanksgiving, us.ThanksgivingDay},
	{market.HolidayChristmas, us.ChristmasDay},
}

// BuiltinSource computes NYSE holidays from calendar rules, for hosts that
// cannot reach the public feed.
type BuiltinSource struct{}

// NewBuiltinSource returns the offline holiday source.
func NewBuiltinSource() *BuiltinSource {
	return &BuiltinSource{}
}

// Fetch implements market.HolidaySource. It never fails. An observed date
// that falls into a neighbouring year (New Year's Day on a Saturday) is not
// a closure for the NYSE and is dropped.
func (s *BuiltinSource) Fetch(_ context.Context, year int) ([]domain.Holiday, error) {
	out := make([]domain.Holiday, 0, len(nyseRules))
	for _, r := range nyseRules {
		_, observed := r.holiday.Calc(year)
		if observed.IsZero() || observed.Year() != year {
			continue
		}
		out = append(out, domain.Holiday{Date: domain.DateOf(observed), Name: r.name})
	}
	return out, nil
}
