package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Equal(t, 15, c.Len())

	for i, q := range c.All() {
		assert.NotEmpty(t, q.PrimaryText, "quote %d", i)
		assert.NotEmpty(t, q.Vocabulary, "quote %s", q.ID)
	}
	assert.Equal(t, "001", c.All()[0].ID)
	assert.Equal(t, "015", c.All()[14].ID)
}

func TestByID(t *testing.T) {
	c := Default()

	q, ok := c.ByID("007")
	require.True(t, ok)
	assert.Equal(t, "Mr. Sunshine", q.SourceTitle)
	assert.Equal(t, "미스터 션샤인", q.SourceTitleLocalized)
	assert.Equal(t, []Gloss{{"나란히", "Side by side"}, {"순간", "Moment"}}, q.Vocabulary)

	_, ok = c.ByID("999")
	assert.False(t, ok)
}

func TestRandomIndex(t *testing.T) {
	c := Default()
	tests := []struct {
		u    float64
		want string
	}{
		{0, "001"},
		{0.0666, "001"},
		{0.0667, "002"},
		{0.5, "008"},
		{0.99999, "015"},
		{1, "015"}, // out of contract, clamped
	}
	for _, tc := range tests {
		got := c.Random(func() float64 { return tc.u })
		assert.Equal(t, tc.want, got.ID, "uniform=%v", tc.u)
	}

	// default source stays in range
	for i := 0; i < 100; i++ {
		_, ok := c.ByID(c.Random(nil).ID)
		assert.True(t, ok)
	}
}

func TestForDateStableWithinDay(t *testing.T) {
	c := Default()
	loc := time.FixedZone("KST", 9*60*60)
	morning := time.Date(2026, 3, 10, 0, 0, 1, 0, loc)
	night := time.Date(2026, 3, 10, 23, 59, 59, 0, loc)
	assert.Equal(t, c.ForDate(morning), c.ForDate(night))
	assert.Equal(t, c.Today(), c.Today())
}

func TestForDateCyclesByDayOfYear(t *testing.T) {
	c := Default()
	all := c.All()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local)
	for d := 0; d < 365; d++ {
		day := start.AddDate(0, 0, d)
		want := all[(d+1)%len(all)]
		assert.Equal(t, want.ID, c.ForDate(day).ID, "day of year %d", d+1)
	}

	jan1 := c.ForDate(start)
	jan16 := c.ForDate(start.AddDate(0, 0, 15))
	assert.Equal(t, jan1.ID, jan16.ID, "day 1 and day 16 wrap to the same entry")
	assert.Equal(t, "002", jan1.ID)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "[]"},
		{"not yaml list", "id: 1"},
		{"missing id", "- day: 1\n"},
		{"duplicate id", "- id: a\n- id: a\n"},
		{"duplicate word", "- id: a\n  vocabulary:\n    - word: x\n    - word: x\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.yaml")
	body := "- id: x1\n  day: 1\n  source_title: Test\n  primary_text: 안녕\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	q, ok := c.ByID("x1")
	require.True(t, ok)
	assert.Equal(t, "Test", q.SourceTitle)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
