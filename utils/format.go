package utils

import "fmt"

// FormatClock renders a duration in seconds as "M:SS", the way the
// dashboard displays session times. Negative input is clamped to 0:00.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatPercent renders a rounded percentage as "N%".
func FormatPercent(pct int) string {
	return fmt.Sprintf("%d%%", pct)
}

// TruncateVisitor shortens a visitor ID for table display.
func TruncateVisitor(visitorID string) string {
	if len(visitorID) > 8 {
		return visitorID[:8]
	}
	return visitorID
}
