package platform

import (
	"fmt"
	"os"
	"strings"
)

// Autostart registers the application to launch at login.
type Autostart interface {
	Enable(execPath string) error
	Disable() error
}

type autostart struct {
	appName string
}

// NewAutostart returns the platform-specific registration for appName.
func NewAutostart(appName string) Autostart {
	return &autostart{appName: appName}
}

// SyncAutostart enables or disables registration for the running executable.
func SyncAutostart(registration Autostart, enabled bool) error {
	if !enabled {
		return registration.Disable()
	}
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	return registration.Enable(execPath)
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err == nil && dir != "" {
		return dir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}
	return fallbackConfigDir(homeDir), nil
}

func slug(appName string) string {
	name := strings.ToLower(strings.TrimSpace(appName))
	if name == "" {
		name = "clickguardian"
	}
	return strings.ReplaceAll(name, " ", "-")
}
