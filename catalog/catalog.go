// Package catalog holds the fixed set of quotes offered for transcription.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed quotes.yaml
var defaultQuotes []byte

// Gloss is a vocabulary hint attached to a quote.
type Gloss struct {
	Word    string `yaml:"word"`
	Meaning string `yaml:"meaning"`
}

// Quote is one catalog record. Records are never mutated after load.
type Quote struct {
	ID                   string  `yaml:"id"`
	Day                  int     `yaml:"day"`
	SourceTitle          string  `yaml:"source_title"`
	SourceTitleLocalized string  `yaml:"source_title_localized"`
	PrimaryText          string  `yaml:"primary_text"`
	TranslatedText       string  `yaml:"translated_text"`
	Vocabulary           []Gloss `yaml:"vocabulary"`
}

var ErrEmpty = errors.New("catalog: no quotes")

// Catalog is an ordered, read-only list of quotes.
type Catalog struct {
	quotes []Quote
	byID   map[string]int
}

// Default returns the catalog bundled with the binary.
func Default() *Catalog {
	c, err := Parse(defaultQuotes)
	if err != nil {
		panic("catalog: embedded quotes.yaml: " + err.Error())
	}
	return c
}

// Load reads a YAML catalog from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML list of quotes. Ids must be unique and
// words unique within each quote.
func Parse(data []byte) (*Catalog, error) {
	var quotes []Quote
	if err := yaml.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(quotes) == 0 {
		return nil, ErrEmpty
	}

	byID := make(map[string]int, len(quotes))
	for i, q := range quotes {
		if q.ID == "" {
			return nil, fmt.Errorf("quote %d: missing id", i)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("quote %s: duplicate id", q.ID)
		}
		words := make(map[string]struct{}, len(q.Vocabulary))
		for _, g := range q.Vocabulary {
			if _, dup := words[g.Word]; dup {
				return nil, fmt.Errorf("quote %s: duplicate word %q", q.ID, g.Word)
			}
			words[g.Word] = struct{}{}
		}
		byID[q.ID] = i
	}
	return &Catalog{quotes: quotes, byID: byID}, nil
}

func (c *Catalog) Len() int { return len(c.quotes) }

// All returns the quotes in catalog order.
func (c *Catalog) All() []Quote {
	return append([]Quote(nil), c.quotes...)
}

func (c *Catalog) ByID(id string) (Quote, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Quote{}, false
	}
	return c.quotes[i], true
}

// Random picks index floor(uniform()*N). uniform must return values in
// [0, 1); nil means math/rand/v2.
func (c *Catalog) Random(uniform func() float64) Quote {
	if uniform == nil {
		uniform = rand.Float64
	}
	i := int(uniform() * float64(len(c.quotes)))
	i = min(max(i, 0), len(c.quotes)-1)
	return c.quotes[i]
}

// ForDate selects the quote at index dayOfYear mod N, where dayOfYear is the
// 1-based calendar day of t in t's location.
func (c *Catalog) ForDate(t time.Time) Quote {
	return c.quotes[t.YearDay()%len(c.quotes)]
}

// Today is ForDate(time.Now()).
func (c *Catalog) Today() Quote {
	return c.ForDate(time.Now())
}
