//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchAtLoginDesktopEntry(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	login, err := NewLaunchAtLogin("RSI Assist", "/opt/rsi assist/rsiassist")
	require.NoError(t, err)

	enabled, err := login.Enabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, login.Apply(true))
	content, err := os.ReadFile(filepath.Join(configDir, "autostart", "rsi-assist.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Name=RSI Assist\n")
	assert.Contains(t, string(content), `Exec="/opt/rsi assist/rsiassist"`)

	enabled, err = login.Enabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, login.Apply(false))
	require.NoError(t, login.Apply(false))
	enabled, err = login.Enabled()
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestNewLaunchAtLoginValidates(t *testing.T) {
	_, err := NewLaunchAtLogin(" ", "/usr/bin/rsiassist")
	assert.Error(t, err)
	_, err = NewLaunchAtLogin("RSIAssist", "")
	assert.Error(t, err)
}

func TestParseIdleMillis(t *testing.T) {
	idle, err := parseIdleMillis("1500\n")
	require.NoError(t, err)
	assert.Equal(t, "1.5s", idle.String())

	_, err = parseIdleMillis("n/a")
	assert.Error(t, err)
}
