package domain

import (
	"errors"
	"testing"
	"time"
)

func TestTypesExist(t *testing.T) {
	// Verify SessionBoundary can be instantiated with zero values.
	b := SessionBoundary{}
	if b.Label != "" {
		t.Error("expected empty Label for zero-value SessionBoundary")
	}
	if !b.At.IsZero() {
		t.Error("expected zero At for zero-value SessionBoundary")
	}

	// Verify enum constants are defined correctly.
	if StatusOpen != "Open" {
		t.Errorf("StatusOpen = %q, want %q", StatusOpen, "Open")
	}
	if StatusPremarket != "Premarket" || StatusAftermarket != "Aftermarket" || StatusClosed != "Closed" {
		t.Error("Status constants have unexpected values")
	}
	if LabelMarketOpen != "Market Opens" {
		t.Errorf("LabelMarketOpen = %q, want %q", LabelMarketOpen, "Market Opens")
	}
	if CalendarDegraded != "degraded" {
		t.Errorf("CalendarDegraded = %q, want %q", CalendarDegraded, "degraded")
	}
}

func TestDateArithmetic(t *testing.T) {
	d := Date{Year: 2024, Month: time.December, Day: 31}
	next := d.AddDays(1)
	if next != (Date{Year: 2025, Month: time.January, Day: 1}) {
		t.Errorf("AddDays(1) = %v, want 2025-01-01", next)
	}
	if !d.Before(next) {
		t.Errorf("%v.Before(%v) = false, want true", d, next)
	}
	if next.Before(d) {
		t.Errorf("%v.Before(%v) = true, want false", next, d)
	}

	leap := Date{Year: 2024, Month: time.February, Day: 28}.AddDays(1)
	if leap.String() != "2024-02-29" {
		t.Errorf("leap day = %s, want 2024-02-29", leap)
	}
}

func TestDateWeekend(t *testing.T) {
	cases := []struct {
		date string
		want bool
	}{
		{"2024-07-05", false}, // Friday
		{"2024-07-06", true},  // Saturday
		{"2024-07-07", true},  // Sunday
		{"2024-07-08", false}, // Monday
	}
	for _, c := range cases {
		d, err := ParseDate(c.date)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", c.date, err)
		}
		if got := d.IsWeekend(); got != c.want {
			t.Errorf("%s IsWeekend() = %v, want %v", c.date, got, c.want)
		}
		if d.String() != c.date {
			t.Errorf("String() = %q, want %q", d.String(), c.date)
		}
	}

	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Error("ParseDate accepted an invalid month")
	}
}

func TestUpcomingEventUntil(t *testing.T) {
	at := time.Date(2024, 7, 5, 11, 0, 0, 0, time.UTC)
	e := UpcomingEvent{SessionBoundary: SessionBoundary{At: at}}

	if got := e.Until(at.Add(-90 * time.Minute)); got != 90*time.Minute {
		t.Errorf("Until = %v, want %v", got, 90*time.Minute)
	}
	if got := e.Until(at.Add(time.Minute)); got != 0 {
		t.Errorf("Until after event = %v, want 0", got)
	}
}

func TestSnapshotDegraded(t *testing.T) {
	if (Snapshot{CalendarState: CalendarReady}).Degraded() {
		t.Error("ready snapshot reported degraded")
	}
	if !(Snapshot{CalendarState: CalendarDegraded}).Degraded() {
		t.Error("degraded snapshot not reported degraded")
	}
}

func TestParseBoundaryLabel(t *testing.T) {
	for _, l := range []BoundaryLabel{LabelPremarketOpen, LabelMarketOpen, LabelMarketClose, LabelAftermarketClose} {
		got, err := ParseBoundaryLabel(string(l))
		if err != nil || got != l {
			t.Errorf("ParseBoundaryLabel(%q) = %q, %v", l, got, err)
		}
	}
	if _, err := ParseBoundaryLabel("Lunch Break"); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("ParseBoundaryLabel(unknown) error = %v, want ErrUnknownLabel", err)
	}
}
