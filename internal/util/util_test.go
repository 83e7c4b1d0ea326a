package util

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"nyseclock/internal/domain"
	"nyseclock/internal/market"
)

func TestRetry(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	err := Retry(context.Background(), 5, 0, func() error {
		attempts++
		if attempts < targetAttempts {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if attempts != targetAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 3

	err := Retry(context.Background(), maxAttempts, 0, func() error {
		attempts++
		return errors.New("persistent error")
	})

	if err == nil {
		t.Fatal("Retry should return error when all attempts fail")
	}
	if attempts != maxAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, maxAttempts)
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return errors.New("fails")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry error = %v, want context.Canceled", err)
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "warn", "json").Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %s", buf.String())
	}

	newLogger(&buf, "debug", "json").Debug("shown", "k", "v")
	if !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("json logger output = %s, want k/v attribute", buf.String())
	}

	buf.Reset()
	newLogger(&buf, "info", "text").Info("shown", "k", "v")
	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("text logger output = %s, want k=v", buf.String())
	}
}

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Minute, "00:00:00"},
		{90*time.Minute + 5*time.Second, "01:30:05"},
		{23*time.Hour + 59*time.Minute + 59*time.Second + 900*time.Millisecond, "23:59:59"},
		{50 * time.Hour, "2d 02:00:00"},
	}
	for _, c := range cases {
		if got := FormatCountdown(c.d); got != c.want {
			t.Errorf("FormatCountdown(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestTradingCalendar(t *testing.T) {
	cal := market.NewSeededCalendar([]domain.Holiday{
		{Date: domain.Date{Year: 2024, Month: time.July, Day: 4}, Name: "Independence Day"},
	})
	tc := NewTradingCalendar(market.NewEngine(cal, nil, 2, nil))
	loc := market.MustNYSEZone().Location()

	if !tc.IsMarketOpen(time.Date(2024, 7, 3, 10, 0, 0, 0, loc)) {
		t.Error("IsMarketOpen = false on a trading morning")
	}
	if tc.IsMarketOpen(time.Date(2024, 7, 4, 10, 0, 0, 0, loc)) {
		t.Error("IsMarketOpen = true on Independence Day")
	}
	if tc.IsTradingDay(time.Date(2024, 7, 6, 10, 0, 0, 0, loc)) {
		t.Error("IsTradingDay = true on a Saturday")
	}

	after := time.Date(2024, 7, 3, 17, 0, 0, 0, loc)
	wantOpen := time.Date(2024, 7, 5, 9, 30, 0, 0, loc)
	if got := tc.NextOpen(after); !got.Equal(wantOpen) {
		t.Errorf("NextOpen = %v, want %v", got, wantOpen)
	}
	wantClose := time.Date(2024, 7, 5, 16, 0, 0, 0, loc)
	if got := tc.NextClose(after); !got.Equal(wantClose) {
		t.Errorf("NextClose = %v, want %v", got, wantClose)
	}
}

func TestLatestFinishedTradingDay(t *testing.T) {
	cal := market.NewSeededCalendar([]domain.Holiday{
		{Date: domain.Date{Year: 2024, Month: time.July, Day: 4}, Name: "Independence Day"},
	})
	tc := NewTradingCalendar(market.NewEngine(cal, nil, 2, nil))
	loc := market.MustNYSEZone().Location()

	cases := []struct {
		at   time.Time
		want domain.Date
	}{
		// Before 20:00 the current day is still running.
		{time.Date(2024, 7, 3, 19, 59, 0, 0, loc), domain.Date{Year: 2024, Month: time.July, Day: 2}},
		{time.Date(2024, 7, 3, 20, 0, 0, 0, loc), domain.Date{Year: 2024, Month: time.July, Day: 3}},
		// Holiday and weekend are skipped.
		{time.Date(2024, 7, 4, 21, 0, 0, 0, loc), domain.Date{Year: 2024, Month: time.July, Day: 3}},
		{time.Date(2024, 7, 7, 12, 0, 0, 0, loc), domain.Date{Year: 2024, Month: time.July, Day: 5}},
	}
	for _, c := range cases {
		got, ok := tc.LatestFinishedTradingDay(c.at)
		if !ok || got != c.want {
			t.Errorf("LatestFinishedTradingDay(%v) = %v, %v, want %v", c.at, got, ok, c.want)
		}
	}
}
