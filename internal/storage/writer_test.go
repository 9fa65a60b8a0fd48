package storage

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"clickguardian/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWriterFlushesLatestOnClose(t *testing.T) {
	store, _ := newTestStore(t)
	writer := NewWriter(store, nil, nil)
	document := DefaultDocument(store.clock())

	for i := 1; i <= 100; i++ {
		document.Counter.Count = i
		writer.Persist(document.Config, document.Counter)
	}
	writer.Close()

	persisted, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, 100, persisted.Counter.Count)
}

func TestWriterPersistAfterCloseIsDropped(t *testing.T) {
	store, _ := newTestStore(t)
	writer := NewWriter(store, nil, nil)
	writer.Close()
	writer.Close()

	writer.Persist(model.DefaultConfig(), DefaultDocument(time.Now()).Counter)

	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestWriterReportsFirstFailureOfEachStreak(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	store := NewStore(filepath.Join(blocker, "config.yaml"), nil)

	var failures atomic.Int32
	writer := NewWriter(store, nil, func(error) { failures.Add(1) })
	document := DefaultDocument(time.Now())

	writer.Submit(document)
	require.Eventually(t, func() bool { return failures.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	document.Counter.Count = 3
	writer.Submit(document)

	require.Eventually(t, func() bool { return len(writer.pending) == 0 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), failures.Load())

	// Unblock the path; the next save succeeds and ends the streak.
	require.NoError(t, os.Remove(blocker))
	document.Counter.Count = 4
	writer.Submit(document)
	require.Eventually(t, func() bool { return writer.IsOwnWrite(document) }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, os.RemoveAll(blocker))
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	writer.Submit(document)
	writer.Close()
	assert.Equal(t, int32(2), failures.Load())
}

func TestWriterRecognizesOwnWrites(t *testing.T) {
	store, _ := newTestStore(t)
	writer := NewWriter(store, nil, nil)
	defer writer.Close()

	document := DefaultDocument(store.clock())
	assert.False(t, writer.IsOwnWrite(document))

	writer.Submit(document)
	require.Eventually(t, func() bool { return writer.IsOwnWrite(document) }, 2*time.Second, 5*time.Millisecond)

	// A read-back of our own file matches; an external edit of the config does not.
	persisted, err := store.Read()
	require.NoError(t, err)
	assert.True(t, writer.IsOwnWrite(persisted))

	edited := persisted
	edited.Config.ClickLimit = 42
	assert.False(t, writer.IsOwnWrite(edited))
}
