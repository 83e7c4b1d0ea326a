// Package holidays provides market.HolidaySource implementations: the public
// Nager.Date feed and an offline rule set.
package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nyseclock/internal/domain"
	"nyseclock/internal/market"
)

// DefaultNagerURL is the versioned public holidays API root.
const DefaultNagerURL = "https://date.nager.at/api/v3"

var _ market.HolidaySource = (*NagerSource)(nil)

// StatusError is returned when the feed answers with a non-2xx status.
type StatusError struct {
	Year int
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("holiday feed returned status %d for %d: %s", e.Code, e.Year, e.Body)
}

// nagerHoliday is one record of /PublicHolidays/{year}/{country}.
type nagerHoliday struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

// NagerSource fetches public holidays from the Nager.Date API.
type NagerSource struct {
	baseURL    string
	country    string
	httpClient *http.Client
}

// NewNagerSource creates a source for the given country code. An empty
// baseURL means DefaultNagerURL.
func NewNagerSource(baseURL, country string, timeout time.Duration) *NagerSource {
	if baseURL == "" {
		baseURL = DefaultNagerURL
	}
	if country == "" {
		country = "US"
	}
	return &NagerSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		country:    country,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch implements market.HolidaySource. Records with unparseable dates are
// skipped. When a record's local name differs from its English name both are
// offered; the calendar keeps the first spelling it recognises.
func (s *NagerSource) Fetch(ctx context.Context, year int) ([]domain.Holiday, error) {
	u := fmt.Sprintf("%s/PublicHolidays/%d/%s", s.baseURL, year, s.country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Year: year, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var records []nagerHoliday
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding holidays for %d: %w", year, err)
	}

	out := make([]domain.Holiday, 0, len(records))
	for _, r := range records {
		d, err := domain.ParseDate(r.Date)
		if err != nil {
			continue
		}
		out = append(out, domain.Holiday{Date: d, Name: r.Name})
		if r.LocalName != "" && r.LocalName != r.Name {
			out = append(out, domain.Holiday{Date: d, Name: r.LocalName})
		}
	}
	return out, nil
}
