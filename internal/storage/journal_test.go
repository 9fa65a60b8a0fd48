package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"clickguardian/internal/core/gate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	journal, err := OpenJournal(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { journal.Close() })
	return journal
}

func TestJournalBeginEnd(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()
	start := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)

	require.NoError(t, journal.Begin(ctx, "ep-1", start, 5))
	require.NoError(t, journal.Begin(ctx, "ep-1", start, 5))

	episodes, err := journal.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.True(t, episodes[0].Open())
	assert.Equal(t, 5, episodes[0].Limit)

	require.NoError(t, journal.End(ctx, "ep-1", start.Add(time.Minute), "expired", 4))
	assert.Error(t, journal.End(ctx, "ep-1", start.Add(2*time.Minute), "closed", 0))

	episodes, err = journal.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.False(t, episodes[0].Open())
	assert.Equal(t, "expired", episodes[0].Resolution)
	assert.Equal(t, 4, episodes[0].CountAtEnd)
	assert.True(t, episodes[0].StartedAt.Equal(start))
}

func TestJournalRecentNewestFirst(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()
	start := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)

	require.NoError(t, journal.Begin(ctx, "old", start, 5))
	require.NoError(t, journal.Begin(ctx, "new", start.Add(time.Hour), 5))

	episodes, err := journal.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, "new", episodes[0].ID)
}

func TestJournalFollowRecordsGateEvents(t *testing.T) {
	journal := newTestJournal(t)
	events := make(chan gate.Event, 4)
	at := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)

	events <- gate.Event{Type: gate.EventCount, Count: 3}
	events <- gate.Event{Type: gate.EventStateChange, State: gate.StateBlocked, EpisodeID: "ep", Limit: 3, At: at}
	events <- gate.Event{Type: gate.EventStateChange, State: gate.StateOpen, EpisodeID: "ep", Count: 2,
		Resolution: gate.ResolutionExpired, At: at.Add(time.Second)}
	close(events)

	journal.Follow(context.Background(), events)

	episodes, err := journal.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, "expired", episodes[0].Resolution)
	assert.Equal(t, 2, episodes[0].CountAtEnd)
}
