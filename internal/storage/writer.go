package storage

import (
	"sync"

	"clickguardian/internal/core/counter"
	"clickguardian/internal/core/model"
	"clickguardian/internal/logging"

	"go.uber.org/zap"
)

// Writer persists documents on its own goroutine so callers never wait on disk.
// Only the newest pending document is kept.
type Writer struct {
	store   *Store
	logger  *zap.Logger
	onError func(error)

	mu      sync.Mutex
	closed  bool
	pending chan Document
	done    chan struct{}

	// Owned by run, read under mu.
	failing     bool
	lastWritten Document
	written     bool
}

// NewWriter starts the persistence worker. onError, which may be nil, is called on the
// worker goroutine for the first failure after a successful save (or the first save).
func NewWriter(store *Store, logger *zap.Logger, onError func(error)) *Writer {
	logger = logging.OrNop(logger)
	writer := &Writer{
		store:   store,
		logger:  logger,
		onError: onError,
		pending: make(chan Document, 1),
		done:    make(chan struct{}),
	}
	go writer.run()
	return writer
}

// Persist queues a snapshot for writing. It never blocks on I/O.
func (writer *Writer) Persist(config model.Config, state counter.State) {
	writer.Submit(Document{Config: config, Counter: state})
}

// Submit queues a document, replacing any document still waiting to be written.
func (writer *Writer) Submit(document Document) {
	writer.mu.Lock()
	defer writer.mu.Unlock()
	if writer.closed {
		return
	}
	for {
		select {
		case writer.pending <- document:
			return
		default:
		}
		select {
		case <-writer.pending:
		default:
		}
	}
}

// Close flushes the last pending document and stops the worker.
func (writer *Writer) Close() {
	writer.mu.Lock()
	if writer.closed {
		writer.mu.Unlock()
		<-writer.done
		return
	}
	writer.closed = true
	close(writer.pending)
	writer.mu.Unlock()
	<-writer.done
}

func (writer *Writer) run() {
	defer close(writer.done)
	for document := range writer.pending {
		if err := writer.store.Save(document); err != nil {
			writer.logger.Error("persist state", zap.String("path", writer.store.Path()), zap.Error(err))
			writer.mu.Lock()
			first := !writer.failing
			writer.failing = true
			writer.mu.Unlock()
			if first && writer.onError != nil {
				writer.onError(err)
			}
			continue
		}
		writer.mu.Lock()
		if writer.failing {
			writer.logger.Info("state persistence recovered", zap.String("path", writer.store.Path()))
		}
		writer.failing = false
		writer.lastWritten = document
		writer.written = true
		writer.mu.Unlock()
		writer.logger.Debug("state persisted", zap.Int("count", document.Counter.Count))
	}
}

// IsOwnWrite reports whether document carries the config of the last document this
// writer saved, i.e. a file change observed on disk may be our own write catching up.
func (writer *Writer) IsOwnWrite(document Document) bool {
	writer.mu.Lock()
	defer writer.mu.Unlock()
	return writer.written && writer.lastWritten.Config == document.Config
}
