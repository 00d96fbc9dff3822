package preferences

import (
	"fmt"
	"strconv"
	"strings"

	"rsiassist/internal/core/model"
)

// Fields is the text content of the break schedule form.
type Fields struct {
	MicroIntervalMinutes string
	MicroDurationSeconds string
	MicroEnabled         bool
	RestIntervalMinutes  string
	RestDurationMinutes  string
	RestEnabled          bool
	DailyLimitHours      string
	DailyEnabled         bool
	WarningSeconds       string
}

// FieldsFromConfig renders a config into form text.
func FieldsFromConfig(config model.BreakConfig) Fields {
	return Fields{
		MicroIntervalMinutes: formatNumber(float64(config.MicrobreakInterval) / 60),
		MicroDurationSeconds: strconv.Itoa(config.MicrobreakDuration),
		MicroEnabled:         config.MicrobreakEnabled,
		RestIntervalMinutes:  formatNumber(float64(config.RestInterval) / 60),
		RestDurationMinutes:  formatNumber(float64(config.RestDuration) / 60),
		RestEnabled:          config.RestEnabled,
		DailyLimitHours:      formatNumber(config.DailyLimitHours()),
		DailyEnabled:         config.DailyEnabled,
		WarningSeconds:       strconv.Itoa(config.WarningDuration),
	}
}

// Apply parses the form onto base. Mode is carried over from base unchanged.
func (fields Fields) Apply(base model.BreakConfig) (model.BreakConfig, error) {
	config := base
	var err error
	if config.MicrobreakInterval, err = parseScaled("Microbreak interval", fields.MicroIntervalMinutes, 60); err != nil {
		return base, err
	}
	if config.MicrobreakDuration, err = parseScaled("Microbreak duration", fields.MicroDurationSeconds, 1); err != nil {
		return base, err
	}
	if config.RestInterval, err = parseScaled("Rest interval", fields.RestIntervalMinutes, 60); err != nil {
		return base, err
	}
	if config.RestDuration, err = parseScaled("Rest duration", fields.RestDurationMinutes, 60); err != nil {
		return base, err
	}
	if config.DailyLimit, err = parseScaled("Daily limit", fields.DailyLimitHours, 3600); err != nil {
		return base, err
	}
	if config.WarningDuration, err = parseScaled("Warning duration", fields.WarningSeconds, 1); err != nil {
		return base, err
	}
	config.MicrobreakEnabled = fields.MicroEnabled
	config.RestEnabled = fields.RestEnabled
	config.DailyEnabled = fields.DailyEnabled
	if err := config.Validate(); err != nil {
		return base, err
	}
	return config, nil
}

func parseScaled(name, value string, scale float64) (int, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return int(parsed*scale + 0.5), nil
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
