//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (login *LaunchAtLogin) enable() error {
	command := exec.Command("reg", "add", registryRunKey,
		"/v", login.name,
		"/t", "REG_SZ",
		"/d", `"`+strings.Trim(login.execPath, `"`)+`"`,
		"/f",
	)
	if output, err := command.CombinedOutput(); err != nil {
		return fmt.Errorf("reg add: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (login *LaunchAtLogin) disable() error {
	registered, err := login.registered()
	if err != nil || !registered {
		return err
	}
	command := exec.Command("reg", "delete", registryRunKey, "/v", login.name, "/f")
	if output, err := command.CombinedOutput(); err != nil {
		return fmt.Errorf("reg delete: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (login *LaunchAtLogin) registered() (bool, error) {
	command := exec.Command("reg", "query", registryRunKey, "/v", login.name)
	if err := command.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, nil
		}
		return false, fmt.Errorf("reg query: %w", err)
	}
	return true, nil
}
