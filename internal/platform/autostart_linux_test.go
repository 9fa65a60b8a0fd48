//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesktopEntryQuotesPathsWithSpaces(t *testing.T) {
	entry := desktopEntry("ClickGuardian", "/opt/click guardian/clickguardian")
	assert.Contains(t, entry, `Exec="/opt/click guardian/clickguardian"`)
	assert.Contains(t, entry, "Name=ClickGuardian\n")
}

func TestAutostartEnableDisable(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	registration := NewAutostart("ClickGuardian")

	require.NoError(t, registration.Enable("/usr/bin/clickguardian"))
	entryPath := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "autostart", "clickguardian.desktop")
	content, err := os.ReadFile(entryPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Exec=/usr/bin/clickguardian\n")

	require.NoError(t, registration.Disable())
	_, err = os.Stat(entryPath)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, registration.Disable())
}

func TestSyncAutostartDisabledRemovesEntry(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	registration := NewAutostart("ClickGuardian")
	require.NoError(t, SyncAutostart(registration, true))
	require.NoError(t, SyncAutostart(registration, false))

	_, err := os.Stat(filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "autostart", "clickguardian.desktop"))
	assert.True(t, os.IsNotExist(err))
}
