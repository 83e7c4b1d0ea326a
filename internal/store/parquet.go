package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"nyseclock/internal/domain"
)

// Compile-time interface check.
var _ ScheduleStore = (*ParquetStore)(nil)

// ParquetStore implements ScheduleStore using Parquet files on disk, one
// file per year.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// ScheduleRecord is the Parquet schema for one session boundary.
type ScheduleRecord struct {
	Date      string `parquet:"date"` // YYYY-MM-DD, NYSE calendar date
	Label     string `parquet:"label"`
	Timestamp int64  `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Status    string `parquet:"status"`
}

func toScheduleRecord(ev domain.UpcomingEvent) ScheduleRecord {
	return ScheduleRecord{
		Date:      ev.Date.String(),
		Label:     string(ev.Label),
		Timestamp: ev.At.UnixMilli(),
		Status:    string(ev.Status),
	}
}

func (r ScheduleRecord) event() (domain.UpcomingEvent, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return domain.UpcomingEvent{}, err
	}
	label, err := domain.ParseBoundaryLabel(r.Label)
	if err != nil {
		return domain.UpcomingEvent{}, err
	}
	return domain.UpcomingEvent{
		SessionBoundary: domain.SessionBoundary{
			Label:  label,
			At:     time.UnixMilli(r.Timestamp).UTC(),
			Status: domain.Status(r.Status),
		},
		Date: date,
	}, nil
}

// ---------------------------------------------------------------------------
// ScheduleStore implementation
// ---------------------------------------------------------------------------

// WriteSchedule writes events to Parquet files grouped by year, merging with
// what is already on disk:
//
//	<DataDir>/schedule/<YYYY>.parquet
func (s *ParquetStore) WriteSchedule(_ context.Context, events []domain.UpcomingEvent) error {
	if len(events) == 0 {
		return nil
	}

	groups := make(map[int][]ScheduleRecord)
	for _, ev := range events {
		groups[ev.Date.Year] = append(groups[ev.Date.Year], toScheduleRecord(ev))
	}

	for year, records := range groups {
		path := s.schedulePath(year)

		existing, _ := readParquetFile[ScheduleRecord](path)
		merged := mergeScheduleRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing schedule for %d: %w", year, err)
		}
	}
	return nil
}

// ReadSchedule reads events dated within [from, to] from the year files that
// cover the range. Missing years are skipped.
func (s *ParquetStore) ReadSchedule(_ context.Context, from, to domain.Date) ([]domain.UpcomingEvent, error) {
	var events []domain.UpcomingEvent
	for year := from.Year; year <= to.Year; year++ {
		records, err := readParquetFile[ScheduleRecord](s.schedulePath(year))
		if err != nil {
			continue
		}
		for _, r := range records {
			ev, err := r.event()
			if err != nil {
				return nil, fmt.Errorf("reading schedule for %d: %w", year, err)
			}
			if ev.Date.Before(from) || to.Before(ev.Date) {
				continue
			}
			events = append(events, ev)
		}
	}
	return events, nil
}

// schedulePath returns the filesystem path for a year's schedule file.
func (s *ParquetStore) schedulePath(year int) string {
	return filepath.Join(s.DataDir, "schedule", fmt.Sprintf("%d.parquet", year))
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeScheduleRecords deduplicates records by (date, label), preferring
// incoming records. Results are sorted by timestamp.
func mergeScheduleRecords(existing, incoming []ScheduleRecord) []ScheduleRecord {
	type key struct {
		date  string
		label string
	}
	seen := make(map[key]ScheduleRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Date, r.Label}] = r
	}
	for _, r := range incoming {
		seen[key{r.Date, r.Label}] = r
	}

	merged := make([]ScheduleRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
