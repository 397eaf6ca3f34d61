// Package store handles SQLite persistence.
package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/versetype/internal/model"
)

const (
	defaultRecorderBuffer = 64
	recordWriteTimeout    = 5 * time.Second
)

// Inserter persists a typed verse.
type Inserter interface {
	InsertTypedVerse(ctx context.Context, tv model.TypedVerse) (string, error)
}

// Recorder writes completed verses in the background so typing never waits
// on the database. Writes are best effort: failures are logged, not retried.
type Recorder struct {
	ins    Inserter
	logger *zap.Logger
	queue  chan model.TypedVerse
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewRecorder starts a recorder with the given queue size. A size <= 0 uses
// the default.
func NewRecorder(ins Inserter, logger *zap.Logger, buffer int) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = defaultRecorderBuffer
	}
	r := &Recorder{
		ins:    ins,
		logger: logger,
		queue:  make(chan model.TypedVerse, buffer),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// Record queues tv for writing without blocking. It reports false when the
// record was dropped because the queue is full or the recorder is closed.
func (r *Recorder) Record(tv model.TypedVerse) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Warn("dropping typed verse after recorder close", verseFields(tv)...)
		return false
	}
	select {
	case r.queue <- tv:
		return true
	default:
		r.logger.Error("dropping typed verse, write queue full", verseFields(tv)...)
		return false
	}
}

// Close stops accepting records and waits for queued ones to be written.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)
	for tv := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), recordWriteTimeout)
		id, err := r.ins.InsertTypedVerse(ctx, tv)
		cancel()
		if err != nil {
			r.logger.Error("failed to save typed verse", append(verseFields(tv), zap.Error(err))...)
			continue
		}
		r.logger.Debug("saved typed verse", append(verseFields(tv), zap.String("id", id))...)
	}
}

func verseFields(tv model.TypedVerse) []zap.Field {
	return []zap.Field{
		zap.String("translation", tv.Translation),
		zap.String("book", tv.Book),
		zap.Int("chapter", tv.Chapter),
		zap.Int("verse", tv.Verse),
		zap.Time("created_at", tv.CreatedAt),
	}
}
