package model

import (
	"errors"
	"fmt"
)

// ErrInvalidMode indicates an operation mode outside Normal, Quiet and Suspended.
var ErrInvalidMode = errors.New("invalid operation mode")

// OperationMode controls how the timer service accounts activity.
type OperationMode string

const (
	ModeNormal    OperationMode = "Normal"
	ModeQuiet     OperationMode = "Quiet"
	ModeSuspended OperationMode = "Suspended"
)

// Modes lists every operation mode in menu order.
var Modes = []OperationMode{ModeNormal, ModeQuiet, ModeSuspended}

// ParseMode converts a string into an OperationMode.
func ParseMode(value string) (OperationMode, error) {
	mode := OperationMode(value)
	if err := mode.Validate(); err != nil {
		return "", err
	}
	return mode, nil
}

// Validate reports whether the mode is known.
func (mode OperationMode) Validate() error {
	switch mode {
	case ModeNormal, ModeQuiet, ModeSuspended:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, string(mode))
	}
}

// BreakConfig is the complete break schedule shared by the client and the timer service.
// Durations and intervals are seconds.
type BreakConfig struct {
	MicrobreakInterval int           `json:"microbreak_interval" yaml:"microbreak_interval"`
	MicrobreakDuration int           `json:"microbreak_duration" yaml:"microbreak_duration"`
	MicrobreakEnabled  bool          `json:"microbreak_enabled" yaml:"microbreak_enabled"`
	RestInterval       int           `json:"rest_interval" yaml:"rest_interval"`
	RestDuration       int           `json:"rest_duration" yaml:"rest_duration"`
	RestEnabled        bool          `json:"rest_enabled" yaml:"rest_enabled"`
	DailyLimit         int           `json:"daily_limit" yaml:"daily_limit"`
	DailyEnabled       bool          `json:"daily_enabled" yaml:"daily_enabled"`
	WarningDuration    int           `json:"warning_duration" yaml:"warning_duration"`
	Mode               OperationMode `json:"mode" yaml:"mode"`
}

// DefaultBreakConfig returns the compiled defaults.
func DefaultBreakConfig() BreakConfig {
	return BreakConfig{
		MicrobreakInterval: 180,
		MicrobreakDuration: 30,
		MicrobreakEnabled:  true,
		RestInterval:       2700,
		RestDuration:       600,
		RestEnabled:        true,
		DailyLimit:         28800,
		DailyEnabled:       true,
		WarningDuration:    30,
		Mode:               ModeNormal,
	}
}

// Validate checks that every duration is non-negative and the mode is known.
func (config BreakConfig) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"microbreak_interval", config.MicrobreakInterval},
		{"microbreak_duration", config.MicrobreakDuration},
		{"rest_interval", config.RestInterval},
		{"rest_duration", config.RestDuration},
		{"daily_limit", config.DailyLimit},
		{"warning_duration", config.WarningDuration},
	}
	for _, field := range fields {
		if field.value < 0 {
			return fmt.Errorf("%s must not be negative, got %d", field.name, field.value)
		}
	}
	return config.Mode.Validate()
}

// BreakDuration returns the configured duration in seconds for a break type.
func (config BreakConfig) BreakDuration(breakType BreakType) int {
	switch breakType {
	case BreakMicro:
		return config.MicrobreakDuration
	case BreakRest:
		return config.RestDuration
	default:
		return 0
	}
}

// DailyLimitHours presents the daily limit in hours.
func (config BreakConfig) DailyLimitHours() float64 {
	return float64(config.DailyLimit) / 3600
}

// WithDailyLimitHours stores a limit given in hours as seconds.
func (config BreakConfig) WithDailyLimitHours(hours float64) BreakConfig {
	if hours < 0 {
		hours = 0
	}
	config.DailyLimit = int(hours*3600 + 0.5)
	return config
}

// PartialBreakConfig is a BreakConfig where any field may be absent.
// It is how the local store and the remote service report what they hold.
type PartialBreakConfig struct {
	MicrobreakInterval *int           `json:"microbreak_interval,omitempty" yaml:"microbreak_interval,omitempty"`
	MicrobreakDuration *int           `json:"microbreak_duration,omitempty" yaml:"microbreak_duration,omitempty"`
	MicrobreakEnabled  *bool          `json:"microbreak_enabled,omitempty" yaml:"microbreak_enabled,omitempty"`
	RestInterval       *int           `json:"rest_interval,omitempty" yaml:"rest_interval,omitempty"`
	RestDuration       *int           `json:"rest_duration,omitempty" yaml:"rest_duration,omitempty"`
	RestEnabled        *bool          `json:"rest_enabled,omitempty" yaml:"rest_enabled,omitempty"`
	DailyLimit         *int           `json:"daily_limit,omitempty" yaml:"daily_limit,omitempty"`
	DailyEnabled       *bool          `json:"daily_enabled,omitempty" yaml:"daily_enabled,omitempty"`
	WarningDuration    *int           `json:"warning_duration,omitempty" yaml:"warning_duration,omitempty"`
	Mode               *OperationMode `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// Partial returns a PartialBreakConfig with every field present.
func (config BreakConfig) Partial() PartialBreakConfig {
	return PartialBreakConfig{
		MicrobreakInterval: &config.MicrobreakInterval,
		MicrobreakDuration: &config.MicrobreakDuration,
		MicrobreakEnabled:  &config.MicrobreakEnabled,
		RestInterval:       &config.RestInterval,
		RestDuration:       &config.RestDuration,
		RestEnabled:        &config.RestEnabled,
		DailyLimit:         &config.DailyLimit,
		DailyEnabled:       &config.DailyEnabled,
		WarningDuration:    &config.WarningDuration,
		Mode:               &config.Mode,
	}
}

// IsEmpty reports whether no field is present.
func (partial PartialBreakConfig) IsEmpty() bool {
	return partial == PartialBreakConfig{}
}

// Resolve merges layers over base in ascending precedence: later layers win field by field.
// The result is always fully specified.
func Resolve(base BreakConfig, layers ...PartialBreakConfig) BreakConfig {
	resolved := base
	for _, layer := range layers {
		overlayInt(&resolved.MicrobreakInterval, layer.MicrobreakInterval)
		overlayInt(&resolved.MicrobreakDuration, layer.MicrobreakDuration)
		overlayBool(&resolved.MicrobreakEnabled, layer.MicrobreakEnabled)
		overlayInt(&resolved.RestInterval, layer.RestInterval)
		overlayInt(&resolved.RestDuration, layer.RestDuration)
		overlayBool(&resolved.RestEnabled, layer.RestEnabled)
		overlayInt(&resolved.DailyLimit, layer.DailyLimit)
		overlayBool(&resolved.DailyEnabled, layer.DailyEnabled)
		overlayInt(&resolved.WarningDuration, layer.WarningDuration)
		if layer.Mode != nil && layer.Mode.Validate() == nil {
			resolved.Mode = *layer.Mode
		}
	}
	return resolved
}

func overlayInt(target *int, value *int) {
	if value != nil && *value >= 0 {
		*target = *value
	}
}

func overlayBool(target *bool, value *bool) {
	if value != nil {
		*target = *value
	}
}
