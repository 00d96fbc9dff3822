package dashboard

import (
	"fmt"

	"rsiassist/internal/core/model"
)

// Fraction returns active/target clamped into 0..1. A zero target counts as complete.
func Fraction(active, target int) float64 {
	if target <= 0 {
		return 1
	}
	if active <= 0 {
		return 0
	}
	if active >= target {
		return 1
	}
	return float64(active) / float64(target)
}

// BreakLine describes one break counter.
func BreakLine(breakType model.BreakType, active, target int, overdue bool) string {
	if overdue {
		return fmt.Sprintf("%s: overdue", breakType.Title())
	}
	return fmt.Sprintf("%s in %s", breakType.Title(), model.FormatClock(target-active))
}

// DailyLine describes daily usage against the limit in hours.
func DailyLine(usage, limit int) string {
	return fmt.Sprintf("Daily usage: %.1fh / %.1fh", float64(usage)/3600, float64(limit)/3600)
}

// IdleLine describes the current idle time.
func IdleLine(idle int) string {
	if idle <= 0 {
		return "Active"
	}
	return fmt.Sprintf("Idle for %s", model.FormatClock(idle))
}

// ModeLine describes the operation mode.
func ModeLine(mode model.OperationMode) string {
	if mode == "" {
		return "Mode: unknown"
	}
	return fmt.Sprintf("Mode: %s", mode)
}
