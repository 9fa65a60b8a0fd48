//go:build !windows

package platform

import (
	"errors"
	"testing"

	"clickguardian/internal/core/gate"

	"github.com/stretchr/testify/assert"
)

func TestHookUnsupported(t *testing.T) {
	hook := NewHook(nil)
	err := hook.Start(func(gate.Click) gate.Verdict { return gate.Admit })
	assert.True(t, errors.Is(err, ErrHookUnsupported))
	assert.NoError(t, hook.Stop())
}
