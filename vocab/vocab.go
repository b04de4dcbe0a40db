// Package vocab is the user's personal glossary: words saved from quotes.
package vocab

import (
	"sync"
	"time"

	"github.com/chiejihye/pilsa/idgen"
	"github.com/chiejihye/pilsa/kv"
	"github.com/chiejihye/pilsa/log"
)

// Entry is one saved word. Word is unique across the collection.
type Entry struct {
	ID      string    `json:"id"`
	Word    string    `json:"word"`
	Meaning string    `json:"meaning"`
	Source  string    `json:"source"`
	SavedAt time.Time `json:"savedAt"`
}

// Store keeps entries in insertion order. Mutations update memory at once
// and hand a snapshot to a background writer.
type Store struct {
	key string
	ids idgen.Generator
	now func() time.Time

	mu      sync.Mutex
	entries []Entry
	writer  *kv.Writer
}

type Option func(*Store)

// WithKey stores the glossary under key instead of kv.KeyVocabulary.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithIDs(gen idgen.Generator) Option {
	return func(s *Store) { s.ids = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads the glossary from store. Absent or corrupt data yields an
// empty glossary.
func Open(store kv.Store, opts ...Option) *Store {
	s := &Store{
		key: kv.KeyVocabulary,
		ids: idgen.Default,
		now: time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	var entries []Entry
	if _, err := kv.LoadJSON(store, s.key, &entries); err != nil {
		log.Warnf("vocabulary: %v; starting empty", err)
		entries = nil
	}
	s.entries = entries
	s.writer = kv.NewWriter(store, s.key, func(err error) {
		log.Warnf("vocabulary: %v", err)
	})
	return s
}

// Add appends word unless an entry with the same word exists, in which
// case nothing changes and ok is false.
func (s *Store) Add(word, meaning, source string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfWord(word) >= 0 {
		return Entry{}, false
	}
	e := Entry{
		ID:      s.ids(),
		Word:    word,
		Meaning: meaning,
		Source:  source,
		SavedAt: s.now().UTC(),
	}
	s.entries = append(s.entries, e)
	s.persist()
	return e, true
}

// Remove deletes the entry with id. It reports false when there was none.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			s.persist()
			return true
		}
	}
	return false
}

func (s *Store) IsSaved(word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOfWord(word) >= 0
}

// Entries returns a copy of the glossary in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close waits for the pending write.
func (s *Store) Close() {
	s.writer.Close()
}

// Linear scan; glossaries stay in the hundreds.
func (s *Store) indexOfWord(word string) int {
	for i, e := range s.entries {
		if e.Word == word {
			return i
		}
	}
	return -1
}

func (s *Store) persist() {
	snapshot := s.entries
	if snapshot == nil {
		snapshot = []Entry{}
	}
	s.writer.Save(snapshot)
}
