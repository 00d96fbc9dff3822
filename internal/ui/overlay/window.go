package overlay

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"rsiassist/internal/core/lifecycle"
	"rsiassist/internal/ui/exercise"
)

// Config defines overlay visuals.
type Config struct {
	Opacity    uint8
	Fullscreen bool
}

// Window manages the break overlay UI. Every method must run on the fyne main thread.
type Window struct {
	window        fyne.Window
	config        Config
	background    *canvas.Rectangle
	titleLabel    *canvas.Text
	subtitleLabel *canvas.Text
	remaining     *canvas.Text
	progress      *widget.ProgressBar
	exerciseTitle *canvas.Text
	exerciseText  *widget.Label
	skipButton    *widget.Button
	onSkip        func()
	visible       bool
}

var (
	textColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	mutedColor  = color.NRGBA{R: 170, G: 170, B: 170, A: 255}
	accentColor = color.NRGBA{R: 96, G: 165, B: 250, A: 255}
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates a hidden overlay window.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow("RSI Assistant Break")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	overlay := &Window{
		window:        window,
		config:        config,
		background:    canvas.NewRectangle(color.NRGBA{A: config.Opacity}),
		titleLabel:    newText("Time for a break!", textColor, 36, true),
		subtitleLabel: newText("Take a moment to stretch and look away from the screen.", textColor, 18, false),
		remaining:     newText("0:00 remaining", textColor, 14, false),
		progress:      widget.NewProgressBar(),
		exerciseTitle: newText("", accentColor, 20, true),
		exerciseText:  widget.NewLabel(""),
		skipButton:    widget.NewButton("Skip Break", nil),
	}
	overlay.progress.Min = 0
	overlay.progress.Max = 100
	overlay.progress.TextFormatter = func() string { return "" }
	overlay.exerciseText.Alignment = fyne.TextAlignCenter
	overlay.exerciseText.Wrapping = fyne.TextWrapWord
	overlay.skipButton.Importance = widget.DangerImportance
	overlay.skipButton.OnTapped = func() {
		if overlay.onSkip != nil {
			overlay.onSkip()
		}
	}

	progressHeader := container.NewHBox(
		newText("Break Progress", textColor, 14, false),
		layout.NewSpacer(),
		overlay.remaining,
	)
	progressBlock := container.NewVBox(
		progressHeader,
		overlay.progress,
		newText("Break will complete automatically", mutedColor, 12, false),
	)
	card := container.NewVBox(
		overlay.titleLabel,
		overlay.subtitleLabel,
		layout.NewSpacer(),
		container.New(&fixedWidthLayout{width: 420}, progressBlock),
		layout.NewSpacer(),
		overlay.exerciseTitle,
		container.New(&fixedWidthLayout{width: 420}, overlay.exerciseText),
		layout.NewSpacer(),
		container.NewCenter(overlay.skipButton),
	)

	window.SetContent(container.NewStack(overlay.background, container.NewCenter(card)))
	overlay.applyWindowMode()
	return overlay
}

// SetOnSkip sets skip handler.
func (overlay *Window) SetOnSkip(handler func()) {
	overlay.onSkip = handler
}

// Show displays the overlay for an armed session.
func (overlay *Window) Show(view lifecycle.View) {
	overlay.titleLabel.Text = view.Title()
	overlay.titleLabel.Refresh()
	overlay.Update(view)
	overlay.skipButton.Enable()
	if overlay.visible {
		return
	}
	overlay.visible = true
	overlay.applyWindowMode()
	overlay.window.Show()
	overlay.window.RequestFocus()
}

// Update refreshes the countdown.
func (overlay *Window) Update(view lifecycle.View) {
	minutes, seconds := view.Session.RemainingClock()
	overlay.remaining.Text = fmt.Sprintf("%d:%02d remaining", minutes, seconds)
	overlay.remaining.Refresh()
	overlay.progress.SetValue(view.Session.ProgressPercent())
	if view.State == lifecycle.StateCompleting || view.State == lifecycle.StateSkipping {
		overlay.skipButton.Disable()
	}
}

// SetExercise shows an exercise suggestion.
func (overlay *Window) SetExercise(prompt exercise.Prompt) {
	overlay.exerciseTitle.Text = prompt.Title
	overlay.exerciseTitle.Refresh()
	overlay.exerciseText.SetText(prompt.Description)
}

// Hide closes the overlay.
func (overlay *Window) Hide() {
	if !overlay.visible {
		return
	}
	overlay.visible = false
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(false)
	}
	overlay.window.Hide()
}

// Visible reports whether the overlay is on screen.
func (overlay *Window) Visible() bool {
	return overlay.visible
}

// UpdateConfig updates overlay visuals.
func (overlay *Window) UpdateConfig(config Config) {
	overlay.config = config
	overlay.background.FillColor = color.NRGBA{A: config.Opacity}
	overlay.background.Refresh()
	overlay.applyWindowMode()
}

func (overlay *Window) applyWindowMode() {
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(true)
	} else {
		overlay.window.SetFullScreen(false)
		overlay.window.Resize(fyne.NewSize(960, 640))
		overlay.window.CenterOnScreen()
	}
	overlay.applyNativeOpacity(overlay.config.Opacity)
}

// OpacityToAlpha converts a 0..1 opacity preference into a color alpha.
func OpacityToAlpha(opacity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity*255 + 0.5)
}

func newText(value string, fill color.Color, size float32, bold bool) *canvas.Text {
	text := canvas.NewText(value, fill)
	text.Alignment = fyne.TextAlignCenter
	text.TextSize = size
	text.TextStyle = fyne.TextStyle{Bold: bold}
	return text
}

type fixedWidthLayout struct {
	width float32
}

func (layout *fixedWidthLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	for _, object := range objects {
		object.Move(fyne.NewPos(0, 0))
		object.Resize(size)
	}
}

func (layout *fixedWidthLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var height float32
	for _, object := range objects {
		if minHeight := object.MinSize().Height; minHeight > height {
			height = minHeight
		}
	}
	return fyne.NewSize(layout.width, height)
}
