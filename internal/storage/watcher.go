package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"clickguardian/internal/logging"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports edits made to the state file by other programs.
// It watches the parent directory because editors replace files instead of writing in place.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	store    *Store
	logger   *zap.Logger
	onChange func(Document)
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher creates a Watcher for store's file.
func NewWatcher(store *Store, logger *zap.Logger, onChange func(Document)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create state watcher: %w", err)
	}
	logger = logging.OrNop(logger)
	return &Watcher{
		watcher:  watcher,
		store:    store,
		logger:   logger,
		onChange: onChange,
		debounce: 250 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (watcher *Watcher) Start(ctx context.Context) error {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.running {
		return nil
	}

	dir := filepath.Dir(watcher.store.Path())
	if err := watcher.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	watcher.running = true
	go watcher.run(ctx)
	return nil
}

// Stop stops watching and waits for the loop to exit.
func (watcher *Watcher) Stop() {
	watcher.mu.Lock()
	if !watcher.running {
		watcher.mu.Unlock()
		_ = watcher.watcher.Close()
		return
	}
	watcher.running = false
	watcher.mu.Unlock()

	close(watcher.stopCh)
	<-watcher.doneCh
	if err := watcher.watcher.Close(); err != nil {
		watcher.logger.Warn("close state watcher", zap.Error(err))
	}
}

func (watcher *Watcher) run(ctx context.Context) {
	defer close(watcher.doneCh)

	target := filepath.Clean(watcher.store.Path())
	var pending <-chan time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-watcher.stopCh:
			return
		case event, ok := <-watcher.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(watcher.debounce)
			pending = timer.C
		case err, ok := <-watcher.watcher.Errors:
			if !ok {
				return
			}
			watcher.logger.Warn("state watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			document, err := watcher.store.Read()
			if err != nil {
				watcher.logger.Warn("reload state file", zap.Error(err))
				continue
			}
			if watcher.onChange != nil {
				watcher.onChange(document)
			}
		}
	}
}
