//go:build !windows

package platform

import "go.uber.org/zap"

type unsupportedHook struct{}

func newHook(*zap.Logger) Hook {
	return unsupportedHook{}
}

func (unsupportedHook) Start(Decider) error {
	return ErrHookUnsupported
}

func (unsupportedHook) Stop() error {
	return nil
}
