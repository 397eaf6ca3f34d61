package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/verte-zerg/versetype/internal/model"
)

type fakeInserter struct {
	mu      sync.Mutex
	saved   []model.TypedVerse
	err     error
	release chan struct{}
}

func (f *fakeInserter) InsertTypedVerse(_ context.Context, tv model.TypedVerse) (string, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, tv)
	return "id", nil
}

func (f *fakeInserter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func TestRecorderDrainsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	ins := &fakeInserter{}
	rec := NewRecorder(ins, nil, 8)
	for i := 1; i <= 5; i++ {
		require.True(t, rec.Record(model.TypedVerse{Book: "ruth", Chapter: 1, Verse: i}))
	}
	rec.Close()

	assert.Equal(t, 5, ins.count())
	assert.False(t, rec.Record(model.TypedVerse{Book: "ruth", Chapter: 1, Verse: 6}))
	rec.Close()
}

func TestRecorderDropsWhenFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	core, logs := observer.New(zapcore.ErrorLevel)
	ins := &fakeInserter{release: make(chan struct{})}
	rec := NewRecorder(ins, zap.New(core), 1)

	// The worker blocks on the first record; the second fills the queue.
	require.True(t, rec.Record(model.TypedVerse{Verse: 1}))
	require.Eventually(t, func() bool { return len(rec.queue) == 0 }, time.Second, time.Millisecond)
	require.True(t, rec.Record(model.TypedVerse{Verse: 2}))
	assert.False(t, rec.Record(model.TypedVerse{Verse: 3}))
	assert.Equal(t, 1, logs.FilterMessage("dropping typed verse, write queue full").Len())

	close(ins.release)
	rec.Close()
	assert.Equal(t, 2, ins.count())
}

func TestRecorderLogsWriteFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	core, logs := observer.New(zapcore.ErrorLevel)
	ins := &fakeInserter{err: errors.New("disk full")}
	rec := NewRecorder(ins, zap.New(core), 4)

	require.True(t, rec.Record(model.TypedVerse{Book: "jonah", Chapter: 2, Verse: 1}))
	rec.Close()

	entries := logs.FilterMessage("failed to save typed verse").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "jonah", entries[0].ContextMap()["book"])
}

func TestRecorderWritesToStore(t *testing.T) {
	st := openTestStore(t)
	rec := NewRecorder(st, nil, 0)
	require.True(t, rec.Record(model.TypedVerse{Translation: "esv", Book: "ruth", Chapter: 1, Verse: 1, CreatedAt: time.Now()}))
	rec.Close()

	got, err := st.ListTypedVerses(context.Background(), model.HistoryConfig{Translation: "esv"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
