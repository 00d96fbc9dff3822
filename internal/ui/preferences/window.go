package preferences

import (
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"rsiassist/internal/core/model"
	"rsiassist/internal/storage"
)

// Handlers are invoked off the UI thread; they may block on the timer service.
type Handlers struct {
	OnSave func(config model.BreakConfig, preferences storage.Preferences) error
	OnMode func(mode model.OperationMode) error
}

// Window handles the preferences UI.
type Window struct {
	window        fyne.Window
	handlers      Handlers
	config        model.BreakConfig
	preferences   storage.Preferences
	microInterval *widget.Entry
	microDuration *widget.Entry
	microEnabled  *widget.Check
	restInterval  *widget.Entry
	restDuration  *widget.Entry
	restEnabled   *widget.Check
	dailyLimit    *widget.Entry
	dailyEnabled  *widget.Check
	warning       *widget.Entry
	mode          *widget.Select
	opacity       *widget.Slider
	fullscreen    *widget.Check
	launchAtLogin *widget.Check
	saveButton    *widget.Button
	syncingMode   bool
}

// New creates a preferences window.
func New(app fyne.App, config model.BreakConfig, preferences storage.Preferences, handlers Handlers) *Window {
	prefs := &Window{
		window:        app.NewWindow("RSI Assistant Settings"),
		handlers:      handlers,
		microInterval: widget.NewEntry(),
		microDuration: widget.NewEntry(),
		microEnabled:  widget.NewCheck("Enable microbreaks", nil),
		restInterval:  widget.NewEntry(),
		restDuration:  widget.NewEntry(),
		restEnabled:   widget.NewCheck("Enable rest breaks", nil),
		dailyLimit:    widget.NewEntry(),
		dailyEnabled:  widget.NewCheck("Enable daily limit", nil),
		warning:       widget.NewEntry(),
		opacity:       widget.NewSlider(0.7, 0.95),
		fullscreen:    widget.NewCheck("Fullscreen overlay", nil),
		launchAtLogin: widget.NewCheck("Launch at login", nil),
	}
	prefs.opacity.Step = 0.01

	modes := make([]string, 0, len(model.Modes))
	for _, mode := range model.Modes {
		modes = append(modes, string(mode))
	}
	prefs.mode = widget.NewSelect(modes, prefs.handleMode)

	form := widget.NewForm(
		widget.NewFormItem("Microbreak every (min)", prefs.microInterval),
		widget.NewFormItem("Microbreak length (sec)", prefs.microDuration),
		widget.NewFormItem("", prefs.microEnabled),
		widget.NewFormItem("Rest break every (min)", prefs.restInterval),
		widget.NewFormItem("Rest break length (min)", prefs.restDuration),
		widget.NewFormItem("", prefs.restEnabled),
		widget.NewFormItem("Daily limit (hours)", prefs.dailyLimit),
		widget.NewFormItem("", prefs.dailyEnabled),
		widget.NewFormItem("Warning (sec)", prefs.warning),
		widget.NewFormItem("Mode", prefs.mode),
	)
	overlay := container.NewVBox(
		widget.NewLabelWithStyle("Overlay", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Overlay opacity"),
		prefs.opacity,
		prefs.fullscreen,
		prefs.launchAtLogin,
	)

	prefs.saveButton = widget.NewButton("Save", prefs.handleSave)
	prefs.saveButton.Importance = widget.HighImportance
	cancelButton := widget.NewButton("Cancel", func() {
		prefs.load(prefs.config, prefs.preferences)
		prefs.window.Hide()
	})
	buttons := container.NewHBox(layout.NewSpacer(), cancelButton, prefs.saveButton)

	prefs.window.SetContent(container.NewBorder(nil, buttons, nil, nil, container.NewVScroll(container.NewVBox(form, overlay))))
	prefs.window.Resize(fyne.NewSize(460, 560))
	prefs.window.SetCloseIntercept(prefs.window.Hide)
	prefs.load(config, preferences)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateConfig replaces the break schedule shown in the form.
func (prefs *Window) UpdateConfig(config model.BreakConfig) {
	prefs.load(config, prefs.preferences)
}

func (prefs *Window) load(config model.BreakConfig, preferences storage.Preferences) {
	prefs.config = config
	prefs.preferences = preferences

	fields := FieldsFromConfig(config)
	prefs.microInterval.SetText(fields.MicroIntervalMinutes)
	prefs.microDuration.SetText(fields.MicroDurationSeconds)
	prefs.microEnabled.SetChecked(fields.MicroEnabled)
	prefs.restInterval.SetText(fields.RestIntervalMinutes)
	prefs.restDuration.SetText(fields.RestDurationMinutes)
	prefs.restEnabled.SetChecked(fields.RestEnabled)
	prefs.dailyLimit.SetText(fields.DailyLimitHours)
	prefs.dailyEnabled.SetChecked(fields.DailyEnabled)
	prefs.warning.SetText(fields.WarningSeconds)

	prefs.syncingMode = true
	prefs.mode.SetSelected(string(config.Mode))
	prefs.syncingMode = false

	prefs.opacity.Value = preferences.OverlayOpacity
	prefs.opacity.Refresh()
	prefs.fullscreen.SetChecked(preferences.Fullscreen)
	prefs.launchAtLogin.SetChecked(preferences.LaunchAtLogin)
}

func (prefs *Window) collect() (model.BreakConfig, storage.Preferences, error) {
	fields := Fields{
		MicroIntervalMinutes: prefs.microInterval.Text,
		MicroDurationSeconds: prefs.microDuration.Text,
		MicroEnabled:         prefs.microEnabled.Checked,
		RestIntervalMinutes:  prefs.restInterval.Text,
		RestDurationMinutes:  prefs.restDuration.Text,
		RestEnabled:          prefs.restEnabled.Checked,
		DailyLimitHours:      prefs.dailyLimit.Text,
		DailyEnabled:         prefs.dailyEnabled.Checked,
		WarningSeconds:       prefs.warning.Text,
	}
	config, err := fields.Apply(prefs.config)
	if err != nil {
		return prefs.config, prefs.preferences, err
	}
	if mode, err := model.ParseMode(prefs.mode.Selected); err == nil {
		config.Mode = mode
	}
	preferences := storage.Preferences{
		OverlayOpacity: prefs.opacity.Value,
		Fullscreen:     prefs.fullscreen.Checked,
		LaunchAtLogin:  prefs.launchAtLogin.Checked,
	}
	return config, preferences, nil
}

func (prefs *Window) handleSave() {
	config, preferences, err := prefs.collect()
	if err != nil {
		dialog.ShowError(err, prefs.window)
		return
	}
	if prefs.handlers.OnSave == nil {
		prefs.load(config, preferences)
		prefs.window.Hide()
		return
	}
	prefs.saveButton.Disable()
	go func() {
		err := prefs.handlers.OnSave(config, preferences)
		fyne.Do(func() {
			prefs.saveButton.Enable()
			if err != nil {
				dialog.ShowError(errors.Join(errors.New("settings were saved on this computer but the timer service did not accept them; they will be retried at the next start"), err), prefs.window)
				return
			}
			prefs.load(config, preferences)
			dialog.ShowInformation("Settings saved", "Your break schedule has been updated.", prefs.window)
		})
	}()
}

func (prefs *Window) handleMode(selected string) {
	if prefs.syncingMode || prefs.handlers.OnMode == nil {
		return
	}
	mode, err := model.ParseMode(selected)
	if err != nil {
		return
	}
	go func() {
		if err := prefs.handlers.OnMode(mode); err != nil {
			fyne.Do(func() {
				dialog.ShowError(err, prefs.window)
			})
		}
	}()
}
