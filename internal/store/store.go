// Package store persists what the market engine observes and computes: the
// journal of status transitions and exported session schedules.
package store

import (
	"context"

	"nyseclock/internal/domain"
)

// TransitionStore persists observed status transitions.
type TransitionStore interface {
	// SaveTransition appends a transition and sets its ID.
	SaveTransition(ctx context.Context, tr *domain.Transition) error

	// ListTransitions returns the most recent transitions, newest first, up
	// to limit.
	ListTransitions(ctx context.Context, limit int) ([]domain.Transition, error)
}

// ScheduleStore persists computed session boundaries.
type ScheduleStore interface {
	// WriteSchedule merges events into storage, replacing any stored event
	// with the same date and label.
	WriteSchedule(ctx context.Context, events []domain.UpcomingEvent) error

	// ReadSchedule returns stored events dated within [from, to] in
	// chronological order.
	ReadSchedule(ctx context.Context, from, to domain.Date) ([]domain.UpcomingEvent, error)
}
