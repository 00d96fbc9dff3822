package platform

import (
	"fmt"
	"strings"
)

// LaunchAtLogin registers the client to start with the user session.
type LaunchAtLogin struct {
	name     string
	execPath string
}

// NewLaunchAtLogin prepares a registration for the executable at execPath.
func NewLaunchAtLogin(name, execPath string) (*LaunchAtLogin, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("launch at login: app name is empty")
	}
	if strings.TrimSpace(execPath) == "" {
		return nil, fmt.Errorf("launch at login: exec path is empty")
	}
	return &LaunchAtLogin{name: name, execPath: execPath}, nil
}

// Apply registers or unregisters the executable. Both directions are idempotent.
func (login *LaunchAtLogin) Apply(enabled bool) error {
	if enabled {
		if err := login.enable(); err != nil {
			return fmt.Errorf("enable launch at login: %w", err)
		}
		return nil
	}
	if err := login.disable(); err != nil {
		return fmt.Errorf("disable launch at login: %w", err)
	}
	return nil
}

// Enabled reports whether a registration currently exists.
func (login *LaunchAtLogin) Enabled() (bool, error) {
	enabled, err := login.registered()
	if err != nil {
		return false, fmt.Errorf("query launch at login: %w", err)
	}
	return enabled, nil
}

func (login *LaunchAtLogin) slug() string {
	return strings.ReplaceAll(strings.ToLower(login.name), " ", "-")
}
