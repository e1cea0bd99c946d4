package domain

import (
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate parses a tracker date value. Due dates arrive as plain
// "YYYY-MM-DD" strings; longer timestamps are accepted by truncation.
func ParseDate(s string) (time.Time, error) {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	return time.Parse(dateLayout, s)
}

// Midnight truncates t to the start of its day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayOffset returns the signed whole-day distance from ref to now, both
// taken at midnight: positive when ref lies in the past, negative when it
// lies in the future. Uses the floor of the real-valued difference.
func DayOffset(now, ref time.Time) int {
	diff := Midnight(now).Sub(Midnight(ref.In(now.Location())))
	return int(math.Floor(diff.Hours() / 24))
}
