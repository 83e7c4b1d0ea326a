// Package nyseclock is a Go SDK for the nyseclock-server HTTP API.
package nyseclock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Event is an upcoming session boundary.
type Event struct {
	Label     string    `json:"label"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
	Date      string    `json:"date"`
	Countdown string    `json:"countdown"`
	Seconds   int64     `json:"seconds"`
}

// Status is the market status at one instant.
type Status struct {
	Now           time.Time `json:"now"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	ClosedForDay  bool      `json:"closedForDay"`
	Upcoming      []Event   `json:"upcoming"`
	CalendarState string    `json:"calendarState"`
	// Advisory is set when the server has no holiday data.
	Advisory string `json:"advisory,omitempty"`
}

// Upcoming lists the next session boundaries.
type Upcoming struct {
	Now      time.Time `json:"now"`
	Events   []Event   `json:"events"`
	Advisory string    `json:"advisory,omitempty"`
}

// Holiday is one NYSE holiday.
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// Holidays lists the holidays the server has loaded.
type Holidays struct {
	CalendarState string    `json:"calendarState"`
	Holidays      []Holiday `json:"holidays"`
	Error         string    `json:"error,omitempty"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nyseclock: HTTP %d: %s", e.StatusCode, e.Message)
}

// Client provides a Go SDK for interacting with the nyseclock-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new nyseclock API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetStatus retrieves the current market status.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	var out Status
	if err := c.get(ctx, "/api/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUpcoming retrieves the next limit session boundaries. A limit of zero
// uses the server default.
func (c *Client) GetUpcoming(ctx context.Context, limit int) (*Upcoming, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out Upcoming
	if err := c.get(ctx, "/api/upcoming", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHolidays retrieves the loaded holiday list.
func (c *Client) GetHolidays(ctx context.Context) (*Holidays, error) {
	var out Holidays
	if err := c.get(ctx, "/api/holidays", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
