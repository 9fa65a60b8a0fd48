package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ChdirToExecutable makes the executable's directory the working directory so that
// relative state paths resolve the same way under autostart and manual launches.
func ChdirToExecutable() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}
	dir := filepath.Dir(execPath)
	if err := os.Chdir(dir); err != nil {
		return "", fmt.Errorf("chdir %s: %w", dir, err)
	}
	return dir, nil
}
