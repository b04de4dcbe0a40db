// Package journal ties the quote catalog to the draft, vocabulary and
// archive stores. It is what the terminal UI drives.
package journal

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/chiejihye/pilsa/archive"
	"github.com/chiejihye/pilsa/catalog"
	"github.com/chiejihye/pilsa/draft"
	"github.com/chiejihye/pilsa/log"
	"github.com/chiejihye/pilsa/vocab"
)

// Mode picks the first quote of a session.
type Mode string

const (
	ModeToday  Mode = "today"
	ModeRandom Mode = "random"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeToday:
		return ModeToday, nil
	case ModeRandom:
		return ModeRandom, nil
	}
	return "", fmt.Errorf("unknown quote mode %q (want today or random)", s)
}

// Stats are the counts shown in the status line.
type Stats struct {
	Archived int
	Words    int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d saved · %d words", s.Archived, s.Words)
}

type Journal struct {
	catalog *catalog.Catalog
	draft   *draft.Store
	vocab   *vocab.Store
	archive *archive.Store

	now     func() time.Time
	uniform func() float64

	mu      sync.Mutex
	current catalog.Quote
	loaded  bool
}

type Option func(*Journal)

func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// WithRandom sets the source of uniform values in [0,1) used to pick the
// next quote.
func WithRandom(uniform func() float64) Option {
	return func(j *Journal) { j.uniform = uniform }
}

func New(cat *catalog.Catalog, d *draft.Store, v *vocab.Store, a *archive.Store, opts ...Option) *Journal {
	j := &Journal{
		catalog: cat,
		draft:   d,
		vocab:   v,
		archive: a,
		now:     time.Now,
		uniform: rand.Float64,
	}
	for _, o := range opts {
		o(j)
	}
	return j
}

// Start loads the first quote and returns it.
func (j *Journal) Start(mode Mode) catalog.Quote {
	var q catalog.Quote
	if mode == ModeRandom {
		q = j.catalog.Random(j.uniform)
	} else {
		q = j.catalog.ForDate(j.now())
	}

	j.mu.Lock()
	j.current = q
	j.loaded = true
	j.mu.Unlock()

	stats := j.Stats()
	log.SessionStart(q.ID, stats.Archived, stats.Words)
	return q
}

// Current returns the quote being transcribed. ok is false before Start.
func (j *Journal) Current() (catalog.Quote, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.current, j.loaded
}

func (j *Journal) Draft() string {
	return j.draft.Get()
}

// Type replaces the draft with text.
func (j *Journal) Type(text string) {
	j.draft.Set(text)
}

// Finish archives the draft against the current quote, clears the draft
// and moves on to a random quote. Nothing happens when no quote is loaded
// or the draft is blank; ok reports whether an entry was created.
func (j *Journal) Finish() (archive.Entry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	text := j.draft.Get()
	if !j.loaded || strings.TrimSpace(text) == "" {
		return archive.Entry{}, false
	}

	q := j.current
	e := j.archive.SaveTranscription(q.ID, q.SourceTitle, q.SourceTitleLocalized, q.PrimaryText, q.TranslatedText, text)
	j.draft.Set("")
	j.current = j.catalog.Random(j.uniform)

	log.Archived(q.ID, q.SourceTitle, text)
	return e, true
}

// SaveWord adds g to the vocabulary with the current quote's title as its
// source. It reports false when the word was already saved.
func (j *Journal) SaveWord(g catalog.Gloss) bool {
	q, _ := j.Current()
	if _, ok := j.vocab.Add(g.Word, g.Meaning, q.SourceTitle); !ok {
		return false
	}
	log.WordSaved(g.Word, q.SourceTitle)
	return true
}

func (j *Journal) IsSaved(word string) bool {
	return j.vocab.IsSaved(word)
}

func (j *Journal) Stats() Stats {
	return Stats{Archived: j.archive.Len(), Words: j.vocab.Len()}
}

func (j *Journal) Archive() *archive.Store  { return j.archive }
func (j *Journal) Vocabulary() *vocab.Store { return j.vocab }

// Close flushes the draft and waits for pending archive and vocabulary
// writes.
func (j *Journal) Close() {
	j.draft.Close()
	j.vocab.Close()
	j.archive.Close()
	log.SessionEnd(j.archive.Len())
}
