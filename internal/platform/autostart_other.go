//go:build !linux && !darwin && !windows

package platform

import (
	"errors"
	"path/filepath"
)

var errAutostartUnsupported = errors.New("autostart unsupported on this platform")

func (registration *autostart) Enable(string) error { return errAutostartUnsupported }

func (registration *autostart) Disable() error { return nil }

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}
