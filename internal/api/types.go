package api

import (
	"time"

	"nyseclock/internal/domain"
	"nyseclock/internal/util"
)

// Advisory is shown with every status computed without holiday data.
const Advisory = "Could not load holiday data. Market status may be inaccurate."

// EventJSON is the JSON representation of an upcoming session boundary.
type EventJSON struct {
	Label     string    `json:"label"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
	Date      string    `json:"date"`      // NYSE calendar date, YYYY-MM-DD
	Countdown string    `json:"countdown"` // HH:MM:SS until At
	Seconds   int64     `json:"seconds"`
}

// StatusJSON is the payload of GET /api/status and of websocket updates.
type StatusJSON struct {
	Now           time.Time   `json:"now"`
	Status        string      `json:"status"`
	Reason        string      `json:"reason,omitempty"`
	ClosedForDay  bool        `json:"closedForDay"`
	Upcoming      []EventJSON `json:"upcoming"`
	CalendarState string      `json:"calendarState"`
	Advisory      string      `json:"advisory,omitempty"`
}

// UpcomingJSON is the payload of GET /api/upcoming.
type UpcomingJSON struct {
	Now      time.Time   `json:"now"`
	Events   []EventJSON `json:"events"`
	Advisory string      `json:"advisory,omitempty"`
}

// HolidayJSON is one loaded holiday.
type HolidayJSON struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// HolidaysJSON is the payload of GET /api/holidays.
type HolidaysJSON struct {
	CalendarState string        `json:"calendarState"`
	Holidays      []HolidayJSON `json:"holidays"`
	Error         string        `json:"error,omitempty"`
}

// TransitionJSON is one journal entry.
type TransitionJSON struct {
	ID     int64     `json:"id"`
	At     time.Time `json:"at"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Reason string    `json:"reason,omitempty"`
}

// TransitionsJSON is the payload of GET /api/transitions.
type TransitionsJSON struct {
	Transitions []TransitionJSON `json:"transitions"`
}

// UpdateJSON is pushed to websocket clients when the status changes.
type UpdateJSON struct {
	Type       string          `json:"type"` // "snapshot" or "transition"
	Transition *TransitionJSON `json:"transition,omitempty"`
	Status     StatusJSON      `json:"status"`
}

// NewEventsJSON converts upcoming events into their wire form, with
// countdowns measured from now.
func NewEventsJSON(now time.Time, events []domain.UpcomingEvent) []EventJSON {
	out := make([]EventJSON, len(events))
	for i, ev := range events {
		until := ev.Until(now)
		out[i] = EventJSON{
			Label:     string(ev.Label),
			Status:    string(ev.Status),
			At:        ev.At.UTC(),
			Date:      ev.Date.String(),
			Countdown: util.FormatCountdown(until),
			Seconds:   int64(until / time.Second),
		}
	}
	return out
}

// NewStatusJSON converts a snapshot into its wire form.
func NewStatusJSON(snap domain.Snapshot) StatusJSON {
	resp := StatusJSON{
		Now:           snap.Now.UTC(),
		Status:        string(snap.Status),
		Reason:        snap.Reason,
		ClosedForDay:  snap.ClosedForDay,
		Upcoming:      NewEventsJSON(snap.Now, snap.Upcoming),
		CalendarState: string(snap.CalendarState),
	}
	if snap.Degraded() {
		resp.Advisory = Advisory
	}
	return resp
}

func newTransitionJSON(tr domain.Transition) TransitionJSON {
	return TransitionJSON{
		ID:     tr.ID,
		At:     tr.At.UTC(),
		From:   string(tr.From),
		To:     string(tr.To),
		Reason: tr.Reason,
	}
}
