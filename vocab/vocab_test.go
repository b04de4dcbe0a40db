package vocab

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiejihye/pilsa/idgen"
	"github.com/chiejihye/pilsa/kv"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func openTest(t *testing.T, m *kv.Memory) *Store {
	t.Helper()
	s := Open(m, WithIDs(idgen.Sequence("w")), WithClock(func() time.Time { return fixedNow }))
	t.Cleanup(s.Close)
	return s
}

func stored(t *testing.T, m *kv.Memory) []Entry {
	t.Helper()
	raw, ok, err := m.Get(kv.KeyVocabulary)
	require.NoError(t, err)
	require.True(t, ok, "vocabulary never written")
	var entries []Entry
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	return entries
}

func TestAddAndDedup(t *testing.T) {
	m := kv.NewMemory()
	s := openTest(t, m)

	e, ok := s.Add("나란히", "Side by side", "Mr. Sunshine")
	require.True(t, ok)
	assert.Equal(t, "w1", e.ID)
	assert.Equal(t, fixedNow, e.SavedAt)

	_, ok = s.Add("나란히", "Next to each other", "Goblin")
	assert.False(t, ok, "same word saved twice")
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "Side by side", s.Entries()[0].Meaning)

	_, ok = s.Add("순간", "Moment", "Mr. Sunshine")
	require.True(t, ok)
	assert.True(t, s.IsSaved("순간"))
	assert.False(t, s.IsSaved("순"))

	words := []string{}
	for _, e := range s.Entries() {
		words = append(words, e.Word)
	}
	assert.Equal(t, []string{"나란히", "순간"}, words)
}

func TestRemove(t *testing.T) {
	m := kv.NewMemory()
	s := openTest(t, m)

	a, _ := s.Add("a", "1", "src")
	b, _ := s.Add("b", "2", "src")
	c, _ := s.Add("c", "3", "src")

	assert.True(t, s.Remove(b.ID))
	assert.False(t, s.Remove(b.ID))
	assert.False(t, s.Remove("missing"))

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, a.ID, entries[0].ID)
	assert.Equal(t, c.ID, entries[1].ID)

	// removed words may be saved again
	_, ok := s.Add("b", "2", "src")
	assert.True(t, ok)
}

func TestEntriesIsCopy(t *testing.T) {
	s := openTest(t, kv.NewMemory())
	s.Add("a", "1", "src")
	got := s.Entries()
	got[0].Word = "changed"
	assert.Equal(t, "a", s.Entries()[0].Word)
}

func TestPersistsOnClose(t *testing.T) {
	m := kv.NewMemory()
	s := Open(m, WithIDs(idgen.Sequence("w")), WithClock(func() time.Time { return fixedNow }))
	s.Add("나란히", "Side by side", "Mr. Sunshine")
	s.Add("순간", "Moment", "Mr. Sunshine")
	s.Close()

	entries := stored(t, m)
	require.Len(t, entries, 2)
	assert.Equal(t, "순간", entries[1].Word)

	raw, _, _ := m.Get(kv.KeyVocabulary)
	for _, key := range []string{`"id"`, `"word"`, `"meaning"`, `"source"`, `"savedAt"`} {
		assert.Contains(t, raw, key)
	}

	reopened := openTest(t, m)
	assert.Equal(t, entries, reopened.Entries())
	assert.True(t, reopened.IsSaved("나란히"))
}

func TestRemoveLastPersistsEmptyList(t *testing.T) {
	m := kv.NewMemory()
	s := Open(m, WithIDs(idgen.Sequence("w")))
	e, _ := s.Add("a", "1", "src")
	s.Remove(e.ID)
	s.Close()

	raw, ok, err := m.Get(kv.KeyVocabulary)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", raw)
}

func TestOpenCorruptStartsEmpty(t *testing.T) {
	for _, raw := range []string{`{`, `{"word":"a"}`, `"text"`} {
		m := kv.NewMemory()
		m.Put(kv.KeyVocabulary, raw)
		s := openTest(t, m)
		assert.Zero(t, s.Len(), "stored %q", raw)
	}
}

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	m := kv.NewMemory()
	m.FailSets(true)
	s := openTest(t, m)

	_, ok := s.Add("a", "1", "src")
	assert.True(t, ok)
	s.Close()
	assert.Equal(t, 1, s.Len())
	assert.Empty(t, m.Writes(kv.KeyVocabulary))
}

func TestWithKey(t *testing.T) {
	m := kv.NewMemory()
	s := Open(m, WithKey("other"))
	s.Add("a", "1", "src")
	s.Close()
	assert.Len(t, m.Writes("other"), 1)
	assert.Empty(t, m.Writes(kv.KeyVocabulary))
}
