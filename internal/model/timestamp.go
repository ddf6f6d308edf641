package model

import (
	"fmt"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05.000"

// ParseTimestamp parses a canonical "YYYY-MM-DD HH:MM:SS,mmm" timestamp in UTC.
// The comma millisecond separator is swapped for a period and whitespace runs
// between date and time are collapsed, so "2024-01-01  10:00:00,000" parses too.
func ParseTimestamp(s string) (time.Time, bool) {
	normalized := strings.Join(strings.Fields(strings.Replace(s, ",", ".", 1)), " ")
	t, err := time.ParseInLocation(timestampLayout, normalized, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatTimestamp renders t back into the canonical log timestamp format.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s,%03d", t.Format("2006-01-02 15:04:05"), t.Nanosecond()/int(time.Millisecond))
}

// DurationMs returns end-start in milliseconds, floored at zero.
func DurationMs(start, end time.Time) int64 {
	d := end.Sub(start).Milliseconds()
	if d < 0 {
		return 0
	}
	return d
}
