package model

import (
	"errors"
	"fmt"
)

// ErrInvalidBreakType indicates a break type other than micro or rest.
var ErrInvalidBreakType = errors.New("invalid break type")

// BreakType identifies which break a call refers to.
type BreakType string

const (
	BreakNone  BreakType = ""
	BreakMicro BreakType = "micro"
	BreakRest  BreakType = "rest"
)

// ParseBreakType converts a string into a BreakType accepted by the timer service.
func ParseBreakType(value string) (BreakType, error) {
	breakType := BreakType(value)
	if err := breakType.Validate(); err != nil {
		return BreakNone, err
	}
	return breakType, nil
}

// Validate reports whether the break type can be sent to the timer service.
func (breakType BreakType) Validate() error {
	switch breakType {
	case BreakMicro, BreakRest:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBreakType, string(breakType))
	}
}

// Title is the human label of the break type.
func (breakType BreakType) Title() string {
	switch breakType {
	case BreakMicro:
		return "Microbreak"
	case BreakRest:
		return "Rest Break"
	default:
		return "Break"
	}
}

// TimerStatus is a snapshot reported by the timer service. All counters are seconds.
type TimerStatus struct {
	DailyUsage     int           `json:"daily_usage"`
	DailyLimit     int           `json:"daily_limit"`
	MicroActive    int           `json:"micro_active"`
	MicroTarget    int           `json:"micro_target"`
	MicroIsOverdue bool          `json:"micro_is_overdue"`
	RestActive     int           `json:"rest_active"`
	RestTarget     int           `json:"rest_target"`
	RestIsOverdue  bool          `json:"rest_is_overdue"`
	CurrentIdle    int           `json:"current_idle"`
	Mode           OperationMode `json:"mode"`
}

// OverdueBreak returns the break that should be enforced. Micro has priority over rest.
func (status TimerStatus) OverdueBreak() BreakType {
	switch {
	case status.MicroIsOverdue:
		return BreakMicro
	case status.RestIsOverdue:
		return BreakRest
	default:
		return BreakNone
	}
}

// FormatClock renders seconds as m:ss. Negative values render as 0:00.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
