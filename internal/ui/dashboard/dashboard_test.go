package dashboard

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"rsiassist/internal/core/model"
)

func TestFraction(t *testing.T) {
	assert.Equal(t, 0.0, Fraction(-5, 100))
	assert.Equal(t, 0.25, Fraction(25, 100))
	assert.Equal(t, 1.0, Fraction(150, 100))
	assert.Equal(t, 1.0, Fraction(0, 0))
}

func TestLines(t *testing.T) {
	assert.Equal(t, "Microbreak in 1:30", BreakLine(model.BreakMicro, 90, 180, false))
	assert.Equal(t, "Rest Break: overdue", BreakLine(model.BreakRest, 2800, 2700, true))
	assert.Equal(t, "Daily usage: 1.5h / 8.0h", DailyLine(5400, 28800))
	assert.Equal(t, "Active", IdleLine(0))
	assert.Equal(t, "Idle for 1:05", IdleLine(65))
	assert.Equal(t, "Mode: Quiet", ModeLine(model.ModeQuiet))
	assert.Equal(t, "Mode: unknown", ModeLine(""))
}

func TestWindowUpdateAndButtons(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	var micro, rest int
	dashboard := New(app, Callbacks{
		OnTakeMicro: func() { micro++ },
		OnTakeRest:  func() { rest++ },
	})

	dashboard.Update(model.TimerStatus{
		DailyUsage:    3600,
		DailyLimit:    28800,
		MicroActive:   60,
		MicroTarget:   180,
		RestActive:    2700,
		RestTarget:    2700,
		RestIsOverdue: true,
		CurrentIdle:   3,
		Mode:          model.ModeNormal,
	})

	assert.Equal(t, "Microbreak in 2:00", dashboard.microLabel.Text)
	assert.InDelta(t, 1.0/3, dashboard.microBar.Value, 0.0001)
	assert.Equal(t, "Rest Break: overdue", dashboard.restLabel.Text)
	assert.Equal(t, "Idle for 0:03", dashboard.idleLabel.Text)
	assert.Equal(t, "Mode: Normal", dashboard.modeLabel.Text)
	assert.Empty(t, dashboard.noticeLabel.Text)

	test.Tap(dashboard.takeMicro)
	test.Tap(dashboard.takeRest)
	test.Tap(dashboard.takeRest)
	assert.Equal(t, 1, micro)
	assert.Equal(t, 2, rest)
}
