package postgres

import "time"

// dayRange returns the half-open UTC window [start, end) covering the
// calendar date of t. All date-scoped queries use this window so that a
// "day" means the same thing everywhere.
func dayRange(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
