package services

import (
	"time"

	"github.com/evofit/evofit-backend/internal/store"
)

// DayRange is the local calendar day containing t: [00:00, next 00:00).
// Using the next midnight rather than 23:59:59.999 keeps the last
// millisecond of the day inside the range.
func DayRange(t time.Time, loc *time.Location) store.TimeRange {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return store.TimeRange{From: start, To: start.AddDate(0, 0, 1)}
}

// SinceDays is the range covering the last days calendar days ending on
// t's day, the window the analytics buckets span.
func SinceDays(t time.Time, loc *time.Location, days int) store.TimeRange {
	today := DayRange(t, loc)
	return store.TimeRange{From: today.From.AddDate(0, 0, -(days - 1)), To: today.To}
}
