// Package draft keeps a debounced copy of in-progress edits so a crash or
// an accidental quit never loses more than the last quiet period.
package draft

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pstuifzand/subtasks/internal/clock"
	"github.com/pstuifzand/subtasks/internal/codec"
	"github.com/pstuifzand/subtasks/internal/focus"
	"github.com/pstuifzand/subtasks/internal/model"
	"github.com/pstuifzand/subtasks/internal/storage"
)

// Key is the blob key the draft is stored under
const Key = "draft"

// DefaultDebounce is the quiet period before a draft is written
const DefaultDebounce = 500 * time.Millisecond

// Draft is the uncommitted editing state
type Draft struct {
	IsDirty         bool            `json:"isDirty"`
	Focus           focus.State     `json:"focusState"`
	ActiveSectionID string          `json:"activeSectionId"`
	Snapshot        []model.Section `json:"snapshot"`
}

// Outline returns the snapshot as an outline
func (d Draft) Outline() *model.Outline {
	outline := &model.Outline{Sections: d.Snapshot}
	return outline.Clone()
}

// Store debounces draft writes to a BlobStore. It is safe for concurrent
// use; the timer callback and callers share one mutex.
type Store struct {
	mu       sync.Mutex
	blobs    storage.BlobStore
	clock    clock.Clock
	debounce time.Duration
	logger   *slog.Logger

	pending    *Draft
	timer      *clock.Timer
	generation uint64
}

// NewStore creates a draft store writing to blobs after debounce of quiet
func NewStore(blobs storage.BlobStore, clk clock.Clock, debounce time.Duration, logger *slog.Logger) *Store {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		blobs:    blobs,
		clock:    clk,
		debounce: debounce,
		logger:   logger.With("component", "draft"),
	}
}

// Observe records the latest editing state. Clean states are ignored;
// dirty ones (re)start the debounce window so only the last state of a
// burst is written.
func (s *Store) Observe(d Draft) {
	if !d.IsDirty {
		return
	}
	snapshot := d
	snapshot.Snapshot = (&model.Outline{Sections: d.Snapshot}).Clone().Sections

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &snapshot
	s.armLocked()
}

func (s *Store) armLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.generation++
	gen := s.generation
	s.timer = s.clock.AfterFunc(s.debounce, func() {
		s.fire(gen)
	})
}

func (s *Store) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.pending == nil {
		return
	}
	if err := s.writeLocked(*s.pending); err != nil {
		s.logger.Warn("draft save failed, retrying", "error", err)
		s.armLocked()
		return
	}
	s.pending = nil
	s.timer = nil
}

func (s *Store) writeLocked(d Draft) error {
	data, err := encode(d)
	if err != nil {
		return err
	}
	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		if diag, err := codec.Diagnose(data); err == nil {
			s.logger.Debug("writing draft", "dirty", d.IsDirty, "bytes", len(data), "cbor", diag)
		}
	}
	return s.blobs.Set(Key, data)
}

// Flush writes a pending draft immediately
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	if err := s.writeLocked(*s.pending); err != nil {
		return err
	}
	s.cancelLocked()
	return nil
}

// Clear cancels any pending write and stores the default draft. Called
// after every successful commit. If the write fails the default draft stays
// pending and is retried like any other draft write.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	if err := s.writeLocked(Draft{}); err != nil {
		s.pending = &Draft{}
		s.armLocked()
		return err
	}
	return nil
}

func (s *Store) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	s.pending = nil
}

// Pending reports whether a write is waiting for its debounce window
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Load reads the stored draft. Missing or damaged data is reported as the
// default (clean) draft.
func (s *Store) Load() Draft {
	data, err := s.blobs.Get(Key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("draft unreadable, ignoring", "error", err)
		}
		return Draft{}
	}
	d, err := decode(data)
	if err != nil {
		s.logger.Warn("draft corrupt, ignoring", "error", err)
		return Draft{}
	}
	return d
}
