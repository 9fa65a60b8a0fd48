package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"clickguardian/internal/core/counter"
	"clickguardian/internal/platform"
	"clickguardian/internal/storage"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitHookSetup, exitCode(fmt.Errorf("start interception: %w", platform.ErrHookSetup)))
	assert.Equal(t, exitHookSetup, exitCode(platform.ErrHookUnsupported))
	assert.Equal(t, exitOK, exitCode(fmt.Errorf("%w: 127.0.0.1:1", platform.ErrAlreadyRunning)))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestStatusMissingFileShowsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), storage.DefaultStateFile)
	out, err := execute(t, "status", "--state", path)
	require.NoError(t, err)
	assert.Contains(t, out, "showing defaults")
	assert.Contains(t, out, "0/5")
}

func TestStatusAndReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), storage.DefaultStateFile)
	store := storage.NewStore(path, nil)
	document := storage.DefaultDocument(time.Now())
	document.Config.ClickLimit = 3
	document.Counter = counter.New(3, 0, time.Now())
	document.Counter.Count = 2
	require.NoError(t, store.Save(document))

	out, err := execute(t, "status", "--state", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2/3")

	out, err = execute(t, "reset", "--state", path)
	require.NoError(t, err)
	assert.Contains(t, out, "limit 3")

	reloaded, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Counter.Count)
	assert.Equal(t, 3, reloaded.Config.ClickLimit)
}

func TestResetRefusesWhileRunning(t *testing.T) {
	guard, err := platform.AcquireSingleInstance(appName)
	require.NoError(t, err)
	defer guard.Release()

	_, err = execute(t, "reset", "--state", filepath.Join(t.TempDir(), storage.DefaultStateFile))
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
}

func TestHistoryCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), storage.DefaultJournalFile)

	out, err := execute(t, "history", "--history", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No episodes recorded.")

	journal, err := storage.OpenJournal(path, nil)
	require.NoError(t, err)
	started := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, journal.Begin(context.Background(), "ep-1", started, 3))
	require.NoError(t, journal.End(context.Background(), "ep-1", started.Add(5*time.Second), "expired", 0))
	require.NoError(t, journal.Begin(context.Background(), "ep-2", started.Add(time.Minute), 3))
	require.NoError(t, journal.Close())

	out, err = execute(t, "history", "--history", path, "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "ep-1")
	assert.Contains(t, out, "expired")
	assert.Contains(t, out, "5s")
	assert.Contains(t, out, "open")
}

func TestResolvePathsKeepsAbsolute(t *testing.T) {
	root := newRootCommand()
	dir := t.TempDir()
	opts := &options{
		statePath:   filepath.Join(dir, "state.yaml"),
		historyPath: "history.db",
		logFile:     "",
	}
	require.NoError(t, opts.resolvePaths(root))
	assert.Equal(t, filepath.Join(dir, "state.yaml"), opts.statePath)
	assert.True(t, filepath.IsAbs(opts.historyPath))
	assert.Empty(t, opts.logFile)
}

type recordingSender struct {
	notifications []*fyne.Notification
}

func (sender *recordingSender) SendNotification(notification *fyne.Notification) {
	sender.notifications = append(sender.notifications, notification)
}

func TestPersistenceAlertNotifies(t *testing.T) {
	test.NewTempApp(t)
	sender := &recordingSender{}

	persistenceAlert(sender)(errors.New("disk full"))

	require.Len(t, sender.notifications, 1)
	assert.Contains(t, sender.notifications[0].Content, "disk full")
}
