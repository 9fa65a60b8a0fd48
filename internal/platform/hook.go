package platform

import (
	"errors"

	"clickguardian/internal/core/gate"
	"clickguardian/internal/logging"

	"go.uber.org/zap"
)

var (
	// ErrHookUnsupported indicates the platform offers no global mouse interception.
	ErrHookUnsupported = errors.New("mouse interception unsupported on this platform")
	// ErrHookSetup indicates the operating system rejected the hook.
	ErrHookSetup = errors.New("install mouse hook")
)

// Decider returns the verdict for one button-down event. It runs on the hook thread
// and must return quickly.
type Decider func(gate.Click) gate.Verdict

// Hook is a process-wide mouse button interception point.
type Hook interface {
	Start(decide Decider) error
	Stop() error
}

// NewHook returns the platform-specific hook.
func NewHook(logger *zap.Logger) Hook {
	logger = logging.OrNop(logger)
	return newHook(logger)
}
