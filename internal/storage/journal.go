package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clickguardian/internal/core/gate"
	"clickguardian/internal/logging"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DefaultJournalFile sits next to the state file.
const DefaultJournalFile = "history.db"

// Episode is one blocking episode as recorded in the journal.
type Episode struct {
	ID         string
	StartedAt  time.Time
	EndedAt    time.Time
	Limit      int
	CountAtEnd int
	Resolution string
}

// Open reports whether the episode has not ended yet.
func (episode Episode) Open() bool {
	return episode.EndedAt.IsZero()
}

// Journal records blocking episodes in SQLite.
type Journal struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenJournal opens (or creates) the journal database.
func OpenJournal(path string, logger *zap.Logger) (*Journal, error) {
	if path == "" {
		path = DefaultJournalFile
	}
	logger = logging.OrNop(logger)
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	journal := &Journal{db: db, logger: logger}
	if err := journal.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return journal, nil
}

// Close closes the database.
func (journal *Journal) Close() error { return journal.db.Close() }

func (journal *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS episodes (
		id           TEXT PRIMARY KEY,
		started_at   TEXT NOT NULL,
		ended_at     TEXT,
		click_limit  INTEGER NOT NULL,
		count_at_end INTEGER NOT NULL DEFAULT 0,
		resolution   TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_episodes_started ON episodes(started_at);
	`
	_, err := journal.db.Exec(schema)
	return err
}

// Begin records the start of an episode. Re-recording the same id is a no-op.
func (journal *Journal) Begin(ctx context.Context, id string, startedAt time.Time, limit int) error {
	_, err := journal.db.ExecContext(ctx,
		`INSERT INTO episodes (id, started_at, click_limit) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		id, startedAt.UTC().Format(time.RFC3339Nano), limit,
	)
	if err != nil {
		return fmt.Errorf("begin episode %s: %w", id, err)
	}
	return nil
}

// End closes an episode with its resolution and the count left after unlocking.
func (journal *Journal) End(ctx context.Context, id string, endedAt time.Time, resolution string, countAtEnd int) error {
	result, err := journal.db.ExecContext(ctx,
		`UPDATE episodes SET ended_at = ?, resolution = ?, count_at_end = ? WHERE id = ? AND ended_at IS NULL`,
		endedAt.UTC().Format(time.RFC3339Nano), resolution, countAtEnd, id,
	)
	if err != nil {
		return fmt.Errorf("end episode %s: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("end episode %s: no open episode", id)
	}
	return nil
}

// Recent returns up to limit episodes, newest first.
func (journal *Journal) Recent(ctx context.Context, limit int) ([]Episode, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := journal.db.QueryContext(ctx,
		`SELECT id, started_at, ended_at, click_limit, count_at_end, resolution
		 FROM episodes ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var episode Episode
		var startedAt string
		var endedAt sql.NullString
		if err := rows.Scan(&episode.ID, &startedAt, &endedAt, &episode.Limit, &episode.CountAtEnd, &episode.Resolution); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episode.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if endedAt.Valid {
			episode.EndedAt, _ = time.Parse(time.RFC3339Nano, endedAt.String)
		}
		episodes = append(episodes, episode)
	}
	return episodes, rows.Err()
}

// Follow records episode boundaries from gate events until events is closed or ctx ends.
func (journal *Journal) Follow(ctx context.Context, events <-chan gate.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			journal.record(ctx, event)
		}
	}
}

func (journal *Journal) record(ctx context.Context, event gate.Event) {
	if event.Type != gate.EventStateChange || event.EpisodeID == "" {
		return
	}
	var err error
	if event.State == gate.StateBlocked {
		err = journal.Begin(ctx, event.EpisodeID, event.At, event.Limit)
	} else {
		err = journal.End(ctx, event.EpisodeID, event.At, string(event.Resolution), event.Count)
	}
	if err != nil {
		journal.logger.Warn("journal episode", zap.Error(err))
	}
}
