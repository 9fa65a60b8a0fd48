package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	logger, err := New(Options{File: path})
	require.NoError(t, err)

	logger.Info("gate ready")
	logger.Debug("hidden at info")
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"gate ready"`)
	assert.NotContains(t, string(content), "hidden at info")
}

func TestVerboseEnablesDebug(t *testing.T) {
	logger, err := New(Options{Verbose: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	logger, err := New(Options{})
	require.NoError(t, err)
	assert.Same(t, logger, OrNop(logger))
}
