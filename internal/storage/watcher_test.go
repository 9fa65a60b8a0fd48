package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsExternalEdits(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Save(DefaultDocument(store.clock())))

	changes := make(chan Document, 4)
	watcher, err := NewWatcher(store, nil, func(document Document) {
		changes <- document
	})
	require.NoError(t, err)
	require.NoError(t, watcher.Start(context.Background()))
	t.Cleanup(watcher.Stop)

	edited := DefaultDocument(store.clock())
	edited.Config.ClickLimit = 77
	require.NoError(t, store.Save(edited))

	select {
	case document := <-changes:
		assert.Equal(t, 77, document.Config.ClickLimit)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Save(DefaultDocument(store.clock())))

	changes := make(chan Document, 4)
	watcher, err := NewWatcher(store, nil, func(document Document) {
		changes <- document
	})
	require.NoError(t, err)
	require.NoError(t, watcher.Start(context.Background()))
	t.Cleanup(watcher.Stop)

	other := filepath.Join(filepath.Dir(store.Path()), "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("hello"), 0o644))

	select {
	case <-changes:
		t.Fatal("unexpected change for unrelated file")
	case <-time.After(600 * time.Millisecond):
	}
}

func TestWatcherStopWithoutStart(t *testing.T) {
	store, _ := newTestStore(t)
	watcher, err := NewWatcher(store, nil, nil)
	require.NoError(t, err)
	watcher.Stop()
}
