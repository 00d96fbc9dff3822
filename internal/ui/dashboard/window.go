package dashboard

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"rsiassist/internal/core/model"
)

// Callbacks defines dashboard action handlers.
type Callbacks struct {
	OnTakeMicro func()
	OnTakeRest  func()
}

// Window shows the live timer status. Every method must run on the fyne main thread.
type Window struct {
	window      fyne.Window
	callbacks   Callbacks
	microLabel  *widget.Label
	microBar    *widget.ProgressBar
	restLabel   *widget.Label
	restBar     *widget.ProgressBar
	dailyLabel  *widget.Label
	dailyBar    *widget.ProgressBar
	idleLabel   *widget.Label
	modeLabel   *widget.Label
	noticeLabel *widget.Label
	takeMicro   *widget.Button
	takeRest    *widget.Button
}

// New creates the dashboard window.
func New(app fyne.App, callbacks Callbacks) *Window {
	dashboard := &Window{
		window:      app.NewWindow("RSI Assistant"),
		callbacks:   callbacks,
		microLabel:  widget.NewLabel("Microbreak"),
		microBar:    widget.NewProgressBar(),
		restLabel:   widget.NewLabel("Rest Break"),
		restBar:     widget.NewProgressBar(),
		dailyLabel:  widget.NewLabel(DailyLine(0, 0)),
		dailyBar:    widget.NewProgressBar(),
		idleLabel:   widget.NewLabel(""),
		modeLabel:   widget.NewLabel(ModeLine("")),
		noticeLabel: widget.NewLabel("Connecting to timer service..."),
	}
	dashboard.takeMicro = widget.NewButton("Take Microbreak", func() {
		if dashboard.callbacks.OnTakeMicro != nil {
			dashboard.callbacks.OnTakeMicro()
		}
	})
	dashboard.takeRest = widget.NewButton("Take Rest Break", func() {
		if dashboard.callbacks.OnTakeRest != nil {
			dashboard.callbacks.OnTakeRest()
		}
	})
	dashboard.noticeLabel.Wrapping = fyne.TextWrapWord

	content := container.NewVBox(
		widget.NewLabelWithStyle("Timers", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		dashboard.microLabel,
		dashboard.microBar,
		dashboard.restLabel,
		dashboard.restBar,
		dashboard.dailyLabel,
		dashboard.dailyBar,
		widget.NewSeparator(),
		container.NewHBox(dashboard.idleLabel, dashboard.modeLabel),
		container.NewGridWithColumns(2, dashboard.takeMicro, dashboard.takeRest),
		dashboard.noticeLabel,
	)
	dashboard.window.SetContent(container.NewPadded(content))
	dashboard.window.Resize(fyne.NewSize(420, 360))
	dashboard.window.SetCloseIntercept(dashboard.window.Hide)
	return dashboard
}

// Show displays the dashboard.
func (dashboard *Window) Show() {
	dashboard.window.Show()
	dashboard.window.RequestFocus()
}

// Update renders a timer status.
func (dashboard *Window) Update(status model.TimerStatus) {
	dashboard.microLabel.SetText(BreakLine(model.BreakMicro, status.MicroActive, status.MicroTarget, status.MicroIsOverdue))
	dashboard.microBar.SetValue(Fraction(status.MicroActive, status.MicroTarget))
	dashboard.restLabel.SetText(BreakLine(model.BreakRest, status.RestActive, status.RestTarget, status.RestIsOverdue))
	dashboard.restBar.SetValue(Fraction(status.RestActive, status.RestTarget))
	dashboard.dailyLabel.SetText(DailyLine(status.DailyUsage, status.DailyLimit))
	dashboard.dailyBar.SetValue(Fraction(status.DailyUsage, status.DailyLimit))
	dashboard.idleLabel.SetText(IdleLine(status.CurrentIdle))
	dashboard.modeLabel.SetText(ModeLine(status.Mode))
	dashboard.noticeLabel.SetText("")
}

// SetNotice shows a transient message, e.g. a failed remote call.
func (dashboard *Window) SetNotice(message string) {
	dashboard.noticeLabel.SetText(message)
}

// ShowAbout displays the about dialog over the dashboard.
func (dashboard *Window) ShowAbout() {
	dashboard.Show()
	dialog.ShowInformation("About RSI Assistant",
		"Break reminders for healthier computer use.\nThe timer service tracks activity; this app enforces the breaks.",
		dashboard.window)
}
