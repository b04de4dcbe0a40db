// Package archive keeps completed transcriptions, newest first.
package archive

import (
	"sync"
	"time"

	"github.com/chiejihye/pilsa/idgen"
	"github.com/chiejihye/pilsa/kv"
	"github.com/chiejihye/pilsa/log"
)

// Entry is one finished transcription with a copy of the quote it was made
// from. JSON names match the data exported by the web version.
type Entry struct {
	ID                   string    `json:"id"`
	SentenceID           string    `json:"sentenceId"`
	SourceTitle          string    `json:"drama"`
	SourceTitleLocalized string    `json:"dramaKorean"`
	PrimaryText          string    `json:"korean"`
	TranslatedText       string    `json:"english"`
	UserTyped            string    `json:"userTyped"`
	CompletedAt          time.Time `json:"completedAt"`
}

type Store struct {
	key string
	ids idgen.Generator
	now func() time.Time

	mu      sync.Mutex
	entries []Entry
	writer  *kv.Writer
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithIDs(gen idgen.Generator) Option {
	return func(s *Store) { s.ids = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads the archive from store. Absent or corrupt data yields an
// empty archive.
func Open(store kv.Store, opts ...Option) *Store {
	s := &Store{
		key: kv.KeyArchive,
		ids: idgen.Default,
		now: time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	var entries []Entry
	if _, err := kv.LoadJSON(store, s.key, &entries); err != nil {
		log.Warnf("archive: %v; starting empty", err)
		entries = nil
	}
	s.entries = entries
	s.writer = kv.NewWriter(store, s.key, func(err error) {
		log.Warnf("archive: %v", err)
	})
	return s
}

// SaveTranscription records userTyped against the given quote fields and
// puts the new entry at the head. Inputs are stored as given.
func (s *Store) SaveTranscription(sentenceID, sourceTitle, sourceTitleLocalized, primaryText, translatedText, userTyped string) Entry {
	e := Entry{
		ID:                   s.ids(),
		SentenceID:           sentenceID,
		SourceTitle:          sourceTitle,
		SourceTitleLocalized: sourceTitleLocalized,
		PrimaryText:          primaryText,
		TranslatedText:       translatedText,
		UserTyped:            userTyped,
		CompletedAt:          s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(s.entries)+1)
	entries = append(entries, e)
	s.entries = append(entries, s.entries...)
	s.persist()
	return e
}

// Remove deletes the entry with id and reports whether it existed.
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

func (s *Store) Get(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns a copy, newest first.
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

func (s *Store) Close() {
	s.writer.Close()
}

func (s *Store) persist() {
	snapshot := s.entries
	if snapshot == nil {
		snapshot = []Entry{}
	}
	s.writer.Save(snapshot)
}
