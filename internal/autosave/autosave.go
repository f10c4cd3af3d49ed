// internal/autosave/autosave.go
package autosave

import (
	"bytes"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SaveFunc persists one serialized snapshot.
type SaveFunc func(snapshot []byte) error

// Saver debounces snapshot persistence: every Update resets a single deadline
// timer (deadlines are replaced, never stacked), so the save fires once, a
// full delay after the last mutation. At most one save is in flight; a save
// that fails only logs, leaving the snapshot dirty for the next cycle. A
// snapshot equal to the last persisted one is skipped entirely.
type Saver struct {
	mu        sync.Mutex
	idle      *sync.Cond
	delay     time.Duration
	save      SaveFunc
	timer     *time.Timer
	pending   []byte
	lastSaved []byte
	saving    bool
	stopped   bool
}

func NewSaver(delay time.Duration, save SaveFunc) *Saver {
	s := &Saver{
		delay: delay,
		save:  save,
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Update records the latest snapshot and resets the deadline.
func (s *Saver) Update(snapshot []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	s.pending = snapshot
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// Seed records the currently persisted snapshot without scheduling a save,
// so the first cycle after load has something to diff against.
func (s *Saver) Seed(snapshot []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSaved = snapshot
}

func (s *Saver) fire() {
	s.mu.Lock()
	if s.stopped || s.saving || s.pending == nil || bytes.Equal(s.pending, s.lastSaved) {
		s.mu.Unlock()
		return
	}
	snapshot := s.pending
	s.saving = true
	s.mu.Unlock()

	err := s.save(snapshot)

	s.mu.Lock()
	s.saving = false
	if err != nil {
		logrus.WithError(err).Warn("Auto-save failed; will retry on next cycle")
	} else {
		s.lastSaved = snapshot
	}
	s.idle.Broadcast()
	s.mu.Unlock()
}

// Flush persists the pending snapshot immediately if it is dirty, first
// waiting out any save already in flight. Unlike the timer path, a flush
// failure is returned to the caller.
func (s *Saver) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	for s.saving {
		s.idle.Wait()
	}
	if s.pending == nil || bytes.Equal(s.pending, s.lastSaved) {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.pending
	s.saving = true
	s.mu.Unlock()

	err := s.save(snapshot)

	s.mu.Lock()
	s.saving = false
	if err == nil {
		s.lastSaved = snapshot
	}
	s.idle.Broadcast()
	s.mu.Unlock()
	return err
}

// Dirty reports whether an unsaved snapshot is pending.
func (s *Saver) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil && !bytes.Equal(s.pending, s.lastSaved)
}

// Stop cancels the deadline. Pending data is not saved; call Flush first if
// it should be.
func (s *Saver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}
