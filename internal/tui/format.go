package tui

import (
	"fmt"
	"math"
	"time"
)

// formatTimestamp renders a wire timestamp like "2025-02-23 09:23:33", or
// nothing when the value is missing or unparseable.
func formatTimestamp(value string) string {
	if value == "" {
		return ""
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return ""
	}
	return parsed.Format("2006-01-02 15:04:05")
}

// formatDate renders a wire timestamp like "April 13, 2025".
func formatDate(value string) string {
	if value == "" {
		return "Unknown date"
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return "Unknown date"
	}
	return parsed.Format("January 2, 2006")
}

// formatDuration renders a duration in minutes as "1h 2m 3s", "2m 3s", or
// "3s". Negative durations keep their sign; the fetch pipeline stores them
// unclamped.
func formatDuration(minutes float64) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	total := int(math.Round(minutes * 60))
	hours := total / 3600
	mins := total % 3600 / 60
	secs := total % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%s%dh %dm %ds", sign, hours, mins, secs)
	case mins > 0:
		return fmt.Sprintf("%s%dm %ds", sign, mins, secs)
	default:
		return fmt.Sprintf("%s%ds", sign, secs)
	}
}
