//go:build linux

package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

func (login *LaunchAtLogin) entryPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(configDir, "autostart", login.slug()+".desktop"), nil
}

func (login *LaunchAtLogin) enable() error {
	path, err := login.entryPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(login.desktopEntry()), 0o644); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}
	return nil
}

func (login *LaunchAtLogin) disable() error {
	path, err := login.entryPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove desktop entry: %w", err)
	}
	return nil
}

func (login *LaunchAtLogin) registered() (bool, error) {
	path, err := login.entryPath()
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func (login *LaunchAtLogin) desktopEntry() string {
	execLine := login.execPath
	if strings.ContainsAny(execLine, " \t") && !strings.HasPrefix(execLine, `"`) {
		execLine = `"` + execLine + `"`
	}
	var entry strings.Builder
	entry.WriteString("[Desktop Entry]\n")
	entry.WriteString("Type=Application\n")
	fmt.Fprintf(&entry, "Name=%s\n", login.name)
	entry.WriteString("Comment=Break reminders for repetitive strain injury recovery\n")
	fmt.Fprintf(&entry, "Exec=%s\n", execLine)
	entry.WriteString("X-GNOME-Autostart-enabled=true\n")
	entry.WriteString("Terminal=false\n")
	return entry.String()
}
