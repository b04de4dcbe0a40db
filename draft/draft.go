// Package draft keeps the in-progress transcription and writes it to the
// key/value store after typing pauses.
package draft

import (
	"sync"
	"time"

	"github.com/chiejihye/pilsa/kv"
	"github.com/chiejihye/pilsa/log"
)

const DefaultDebounce = 500 * time.Millisecond

// Store holds the current draft. Writes are debounced through one timer:
// each Set stops the pending timer and arms a new one, so only the value
// present when typing pauses reaches storage. A value set less than the
// debounce interval before the process dies is lost unless Close runs.
type Store struct {
	kv       kv.Store
	key      string
	debounce time.Duration

	// writeMu orders writes: it is held from the snapshot through the
	// store write, so values land in the order they were captured.
	writeMu sync.Mutex

	mu     sync.Mutex
	text   string
	dirty  bool
	timer  *time.Timer
	closed bool
}

type Option func(*Store)

// WithDebounce sets the quiet period before a write. Non-positive values
// fall back to DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithKey overrides the storage key (default kv.KeyDraft).
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// Open restores the draft from store. An absent or unreadable value yields
// an empty draft.
func Open(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:       store,
		key:      kv.KeyDraft,
		debounce: DefaultDebounce,
	}
	for _, o := range opts {
		o(s)
	}

	var text string
	if _, err := kv.LoadJSON(store, s.key, &text); err != nil {
		log.Warnf("draft: %v; starting empty", err)
		text = ""
	}
	s.text = text
	return s
}

func (s *Store) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Set replaces the draft and reschedules the write.
func (s *Store) Set(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.text = text
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.flush)
}

// Debounce reports the configured quiet period.
func (s *Store) Debounce() time.Duration { return s.debounce }

func (s *Store) flush() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	text := s.text
	s.dirty = false
	s.mu.Unlock()

	if err := kv.SaveJSON(s.kv, s.key, text); err != nil {
		log.Warnf("draft: %v", err)
	}
}

// Close cancels the timer, waits for a write already in progress and then
// writes a pending value immediately. Later Sets are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flush()
}
