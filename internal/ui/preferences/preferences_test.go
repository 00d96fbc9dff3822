package preferences

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsiassist/internal/core/model"
	"rsiassist/internal/storage"
)

func TestFieldsRoundTripDefaults(t *testing.T) {
	config := model.DefaultBreakConfig()
	fields := FieldsFromConfig(config)

	assert.Equal(t, "3", fields.MicroIntervalMinutes)
	assert.Equal(t, "30", fields.MicroDurationSeconds)
	assert.Equal(t, "45", fields.RestIntervalMinutes)
	assert.Equal(t, "10", fields.RestDurationMinutes)
	assert.Equal(t, "8", fields.DailyLimitHours)

	applied, err := fields.Apply(config)
	require.NoError(t, err)
	assert.Equal(t, config, applied)
}

func TestFieldsApplyConvertsUnits(t *testing.T) {
	base := model.DefaultBreakConfig()
	base.Mode = model.ModeQuiet
	fields := FieldsFromConfig(base)
	fields.MicroIntervalMinutes = "2.5"
	fields.RestDurationMinutes = " 7 "
	fields.DailyLimitHours = "6.5"
	fields.RestEnabled = false

	config, err := fields.Apply(base)
	require.NoError(t, err)
	assert.Equal(t, 150, config.MicrobreakInterval)
	assert.Equal(t, 420, config.RestDuration)
	assert.Equal(t, 23400, config.DailyLimit)
	assert.False(t, config.RestEnabled)
	assert.Equal(t, model.ModeQuiet, config.Mode)
}

func TestFieldsApplyRejectsBadInput(t *testing.T) {
	base := model.DefaultBreakConfig()

	fields := FieldsFromConfig(base)
	fields.WarningSeconds = "soon"
	config, err := fields.Apply(base)
	assert.EqualError(t, err, "Warning duration must be a number")
	assert.Equal(t, base, config)

	fields = FieldsFromConfig(base)
	fields.RestIntervalMinutes = "-1"
	_, err = fields.Apply(base)
	assert.EqualError(t, err, "Rest interval must not be negative")
}

func TestWindowCollect(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	prefs := New(app, model.DefaultBreakConfig(), storage.DefaultPreferences(), Handlers{})
	prefs.microDuration.SetText("45")
	prefs.fullscreen.SetChecked(false)
	prefs.launchAtLogin.SetChecked(true)

	config, preferences, err := prefs.collect()
	require.NoError(t, err)
	assert.Equal(t, 45, config.MicrobreakDuration)
	assert.Equal(t, model.ModeNormal, config.Mode)
	assert.False(t, preferences.Fullscreen)
	assert.True(t, preferences.LaunchAtLogin)
	assert.InDelta(t, 0.85, preferences.OverlayOpacity, 0.0001)
}

func TestWindowLoadDoesNotTriggerModeHandler(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	calls := 0
	prefs := New(app, model.DefaultBreakConfig(), storage.DefaultPreferences(), Handlers{
		OnMode: func(model.OperationMode) error {
			calls++
			return nil
		},
	})
	config := model.DefaultBreakConfig()
	config.Mode = model.ModeSuspended
	prefs.UpdateConfig(config)

	assert.Equal(t, string(model.ModeSuspended), prefs.mode.Selected)
	assert.Equal(t, 0, calls)
}
