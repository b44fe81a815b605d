package models

import (
	"fmt"
	"strings"
	"time"
)

// FormatResponseTime renders the interval between submission and the most
// recent update as "Nd N hr N min", or "under 1 minute" for sub-minute
// intervals. Negative intervals are treated as zero.
func FormatResponseTime(submittedAt, updatedAt time.Time) string {
	d := updatedAt.Sub(submittedAt)
	if d < time.Minute {
		return "under 1 minute"
	}

	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hr", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d min", minutes))
	}
	return strings.Join(parts, " ")
}

// FormatFileSize renders a byte count with a binary unit, one decimal for
// fractional values.
func FormatFileSize(bytes int64) string {
	const (
		kib = 1024
		mib = 1024 * kib
	)
	switch {
	case bytes >= mib:
		return trimZero(fmt.Sprintf("%.1f", float64(bytes)/mib)) + " MB"
	case bytes >= kib:
		return trimZero(fmt.Sprintf("%.1f", float64(bytes)/kib)) + " KB"
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}

// FormatSubmittedAt renders a submission timestamp for list rows and cards.
func FormatSubmittedAt(t time.Time) string {
	return t.Local().Format("Jan 2, 2006 3:04 PM")
}
