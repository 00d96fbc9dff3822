package lifecycle

import "rsiassist/internal/core/model"

// Session is the break currently enforced. LockedDuration never changes once armed.
type Session struct {
	BreakType      model.BreakType
	LockedDuration int
	Elapsed        int
	Submitted      bool
}

// RemainingSeconds is the countdown value, never negative.
func (session Session) RemainingSeconds() int {
	remaining := session.LockedDuration - session.Elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ProgressPercent counts down from 100 to 0. An unarmed or zero-length session reports 0.
func (session Session) ProgressPercent() float64 {
	if session.LockedDuration <= 0 {
		return 0
	}
	return 100 * float64(session.RemainingSeconds()) / float64(session.LockedDuration)
}

// RemainingClock splits the remaining seconds into minutes and seconds.
func (session Session) RemainingClock() (minutes int, seconds int) {
	remaining := session.RemainingSeconds()
	return remaining / 60, remaining % 60
}

// View is a read-only snapshot of the controller.
type View struct {
	State   State
	Session Session
}

// Active reports whether a break is being enforced.
func (view View) Active() bool {
	return view.State != StateIdle && view.Session.BreakType != model.BreakNone
}

// Title is the overlay headline for the session.
func (view View) Title() string {
	switch view.Session.BreakType {
	case model.BreakMicro:
		return "Microbreak Time!"
	case model.BreakRest:
		return "Rest Break Time!"
	default:
		return "Time for a break!"
	}
}
