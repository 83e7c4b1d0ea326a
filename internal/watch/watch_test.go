package watch

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyseclock/internal/domain"
	"nyseclock/internal/market"
	"nyseclock/internal/store"
)

type recorder struct {
	mu  sync.Mutex
	got []domain.Transition
}

func (r *recorder) Notify(tr domain.Transition, _ domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, tr)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func testEngine() *market.Engine {
	cal := market.NewSeededCalendar([]domain.Holiday{
		{Date: domain.Date{Year: 2024, Month: time.July, Day: 4}, Name: market.HolidayIndependence},
	})
	return market.NewEngine(cal, nil, 2, nil)
}

func TestCheckDetectsTransitions(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 7, 3, 13, 29, 59, 0, time.UTC)}
	rec := &recorder{}
	w := New(testEngine(), Config{Now: clock.Now}, rec)
	ctx := context.Background()

	assert.Nil(t, w.Check(ctx), "first check is the baseline")
	last, ok := w.Last()
	require.True(t, ok)
	assert.Equal(t, domain.StatusPremarket, last.Status)

	clock.Set(time.Date(2024, 7, 3, 13, 30, 0, 0, time.UTC))
	tr := w.Check(ctx)
	require.NotNil(t, tr)
	assert.Equal(t, domain.StatusPremarket, tr.From)
	assert.Equal(t, domain.StatusOpen, tr.To)

	clock.Set(time.Date(2024, 7, 3, 15, 0, 0, 0, time.UTC))
	assert.Nil(t, w.Check(ctx), "no change within the session")

	require.Len(t, rec.got, 1)
	assert.Equal(t, domain.StatusOpen, rec.got[0].To)
}

func TestCheckReasonChange(t *testing.T) {
	// Overnight into the holiday: Closed both sides, but the day is now a
	// holiday.
	clock := &fakeClock{t: time.Date(2024, 7, 4, 3, 59, 0, 0, time.UTC)}
	w := New(testEngine(), Config{Now: clock.Now})
	ctx := context.Background()
	w.Check(ctx)

	clock.Set(time.Date(2024, 7, 4, 4, 0, 0, 0, time.UTC))
	tr := w.Check(ctx)
	require.NotNil(t, tr)
	assert.Equal(t, domain.StatusClosed, tr.From)
	assert.Equal(t, domain.StatusClosed, tr.To)
	assert.Equal(t, market.HolidayIndependence, tr.Reason)
}

func TestCheckRecordsJournal(t *testing.T) {
	journal, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer journal.Close()

	clock := &fakeClock{t: time.Date(2024, 7, 3, 19, 59, 0, 0, time.UTC)}
	w := New(testEngine(), Config{Now: clock.Now, Journal: journal})
	ctx := context.Background()
	w.Check(ctx)

	clock.Set(time.Date(2024, 7, 3, 20, 0, 0, 0, time.UTC))
	tr := w.Check(ctx)
	require.NotNil(t, tr)
	assert.NotZero(t, tr.ID)

	trs, err := journal.ListTransitions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, trs, 1)
	assert.Equal(t, domain.StatusOpen, trs[0].From)
	assert.Equal(t, domain.StatusAftermarket, trs[0].To)
}

func TestRunStopsOnCancel(t *testing.T) {
	w := New(testEngine(), Config{Interval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := w.Last()
		return ok
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
