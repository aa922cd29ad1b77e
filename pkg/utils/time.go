package utils

import (
	"time"
)

// ToMillis returns t as Unix milliseconds, the resolution snapshots are persisted at.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts Unix milliseconds back into a UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// TruncateMillis drops sub-millisecond precision and the monotonic reading.
func TruncateMillis(t time.Time) time.Time {
	return FromMillis(ToMillis(t))
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
