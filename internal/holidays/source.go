package holidays

import (
	"fmt"

	"nyseclock/internal/config"
	"nyseclock/internal/market"
)

// NewSource returns the holiday source selected by cfg.Source.
func NewSource(cfg config.HolidaysConfig) (market.HolidaySource, error) {
	switch cfg.Source {
	case config.SourceNager:
		return NewNagerSource(cfg.BaseURL, cfg.Country, cfg.Timeout), nil
	case config.SourceBuiltin:
		return NewBuiltinSource(), nil
	default:
		return nil, fmt.Errorf("unknown holiday source %q", cfg.Source)
	}
}
