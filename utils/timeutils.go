package utils

import (
	"time"
)

// Iso8601 formats t in ISO8601 (RFC 3339, UTC)
func Iso8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ValidUntil returns the ISO8601 time validity after t, or "" when either is unset
func ValidUntil(t time.Time, validity time.Duration) string {
	if t.IsZero() || validity <= 0 {
		return ""
	}
	return Iso8601(t.Add(validity))
}

// UnixSeconds returns t as unsigned Unix seconds; zero and pre-epoch times map to 0
func UnixSeconds(t time.Time) uint64 {
	if t.IsZero() || t.Unix() < 0 {
		return 0
	}
	return uint64(t.Unix())
}
