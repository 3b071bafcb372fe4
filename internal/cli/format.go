// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatTokens formats a token count with human-readable suffixes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M", 1234567890 -> "1.2B"
func FormatTokens(n uint64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatUint(n, 10)
	}
}

// FormatCost formats a USD cost value.
func FormatCost(cost float64) string {
	if cost >= 100 {
		return fmt.Sprintf("$%.0f", cost)
	}
	if cost >= 10 {
		return fmt.Sprintf("$%.1f", cost)
	}
	return fmt.Sprintf("$%.2f", cost)
}

// FormatMinutes formats active minutes into a human-readable duration.
// e.g., 125 -> "2h 5m", 45 -> "45m"
func FormatMinutes(minutes uint32) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatTimestamp shortens an RFC3339 timestamp to local "2006-01-02 15:04".
// Unparseable timestamps pass through unchanged.
func FormatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04")
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number
// (Sunday = 0).
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}

// Truncate shortens s to max runes, appending "..." when cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
