//go:build !windows

package overlay

// applyNativeOpacity is a no-op where the background rectangle alpha is the only transparency.
func (overlay *Window) applyNativeOpacity(uint8) {}
