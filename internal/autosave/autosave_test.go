// internal/autosave/autosave_test.go
package autosave

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu    sync.Mutex
	saves [][]byte
	err   error
}

func (r *recordingSink) save(snapshot []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saves = append(r.saves, snapshot)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func TestDebounceCollapsesBurstOfEdits(t *testing.T) {
	sink := &recordingSink{}
	saver := NewSaver(50*time.Millisecond, sink.save)
	defer saver.Stop()

	// edits inside the window keep pushing the deadline out
	saver.Update([]byte(`{"step":1}`))
	time.Sleep(20 * time.Millisecond)
	saver.Update([]byte(`{"step":2}`))
	time.Sleep(20 * time.Millisecond)
	saver.Update([]byte(`{"step":3}`))

	// before the final deadline nothing has been saved
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, sink.count())

	time.Sleep(60 * time.Millisecond)
	require.Equal(t, 1, sink.count())
	assert.Equal(t, []byte(`{"step":3}`), sink.saves[0])
}

func TestUnchangedSnapshotIsSkipped(t *testing.T) {
	sink := &recordingSink{}
	saver := NewSaver(20*time.Millisecond, sink.save)
	defer saver.Stop()

	snapshot := []byte(`{"a":1}`)
	saver.Seed(snapshot)
	saver.Update(snapshot)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, sink.count())
}

func TestFailedSaveStaysDirty(t *testing.T) {
	sink := &recordingSink{err: errors.New("connection reset")}
	saver := NewSaver(20*time.Millisecond, sink.save)
	defer saver.Stop()

	saver.Update([]byte(`{"a":1}`))
	time.Sleep(50 * time.Millisecond)

	assert.True(t, saver.Dirty())

	// sink recovers; next edit cycle retries
	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()

	saver.Update([]byte(`{"a":2}`))
	time.Sleep(50 * time.Millisecond)

	assert.False(t, saver.Dirty())
	assert.Equal(t, 1, sink.count())
}

func TestFlushSavesImmediately(t *testing.T) {
	sink := &recordingSink{}
	saver := NewSaver(time.Hour, sink.save)
	defer saver.Stop()

	saver.Update([]byte(`{"a":1}`))
	require.NoError(t, saver.Flush())

	assert.Equal(t, 1, sink.count())
	assert.False(t, saver.Dirty())
}

func TestFlushWaitsForInFlightSave(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	saver := NewSaver(10*time.Millisecond, func(snapshot []byte) error {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	})
	defer saver.Stop()

	saver.Update([]byte(`{"a":1}`))
	<-started // the timer save is now in flight

	flushed := make(chan error, 1)
	go func() { flushed <- saver.Flush() }()

	time.Sleep(30 * time.Millisecond)
	close(release)

	require.NoError(t, <-flushed)
	assert.False(t, saver.Dirty())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxInFlight)
}

func TestFlushNoopsWhenClean(t *testing.T) {
	sink := &recordingSink{}
	saver := NewSaver(time.Hour, sink.save)
	defer saver.Stop()

	require.NoError(t, saver.Flush())
	assert.Equal(t, 0, sink.count())
}

func TestStopCancelsPendingSave(t *testing.T) {
	sink := &recordingSink{}
	saver := NewSaver(20*time.Millisecond, sink.save)

	saver.Update([]byte(`{"a":1}`))
	saver.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, sink.count())
}
