package service

import (
	"fmt"
	"time"
)

const (
	jobRefPrefix  = "IDSJBN"
	billRefPrefix = "IDSBN"
)

// jobRef formats a job reference, e.g. IDSJBN-35-26-003: ISO week, two-digit
// year, three-digit per-week sequence.
func jobRef(t time.Time, seq int64) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%s-%02d-%02d-%03d", jobRefPrefix, week, year%100, seq)
}

// billRef formats a bill reference, e.g. IDSBN-10-2025-234. Bills carry the
// full year.
func billRef(t time.Time, seq int64) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%s-%02d-%d-%03d", billRefPrefix, week, year, seq)
}

// weekWindow returns [Monday 00:00 UTC, next Monday) of t's week, the range
// the reference sequence counts over.
func weekWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	from := day.AddDate(0, 0, -offset)
	return from, from.AddDate(0, 0, 7)
}
