// Package config loads pilsa's settings. Later layers win: built-in
// defaults, the YAML file, the environment, then command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chiejihye/pilsa/draft"
	"github.com/chiejihye/pilsa/journal"
)

const (
	AppDir   = "pilsa"
	FileName = "config.yaml"

	EnvDataDir = "PILSA_DATA_DIR"
)

type Config struct {
	// DataDir holds pilsa.db.
	DataDir  string        `yaml:"data_dir"`
	Debounce time.Duration `yaml:"debounce"`
	Sound    bool          `yaml:"sound"`
	// QuoteMode picks the first quote: "today" or "random".
	QuoteMode string `yaml:"quote_mode"`
	// Catalog is an optional YAML quote file replacing the built-in one.
	Catalog  string `yaml:"catalog"`
	LogLevel string `yaml:"log_level"`
}

// file is the on-disk shape. Pointers tell unset keys from zero values.
type file struct {
	DataDir   *string        `yaml:"data_dir"`
	Debounce  *time.Duration `yaml:"debounce"`
	Sound     *bool          `yaml:"sound"`
	QuoteMode *string        `yaml:"quote_mode"`
	Catalog   *string        `yaml:"catalog"`
	LogLevel  *string        `yaml:"log_level"`
}

// Overrides are values given on the command line. nil fields were not set.
type Overrides struct {
	DataDir   *string
	Debounce  *time.Duration
	Sound     *bool
	QuoteMode *string
	Catalog   *string
}

func Default() Config {
	dir, err := DefaultDataDir()
	if err != nil {
		dir = AppDir
	}
	return Config{
		DataDir:   dir,
		Debounce:  draft.DefaultDebounce,
		Sound:     true,
		QuoteMode: string(journal.ModeToday),
		LogLevel:  "info",
	}
}

// DefaultPath is config.yaml under the user config directory
// ($XDG_CONFIG_HOME/pilsa on Linux).
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppDir, FileName), nil
}

// DefaultDataDir is $XDG_DATA_HOME/pilsa (~/.local/share/pilsa) on Linux
// and the user config directory elsewhere.
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, AppDir), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", AppDir), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppDir), nil
}

// Load builds the configuration from defaults, the YAML file at path and
// the environment. An empty path means DefaultPath, which may be absent; a
// path given explicitly must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		f, err := readFile(path)
		switch {
		case err == nil:
			cfg.merge(f)
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, err
		}
	}

	if dir := os.Getenv(EnvDataDir); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

func readFile(path string) (file, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return file{}, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (file, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return file{}, fmt.Errorf("parsing config: %w", err)
	}
	return f, nil
}

func (c *Config) merge(f file) {
	if f.DataDir != nil {
		c.DataDir = *f.DataDir
	}
	if f.Debounce != nil {
		c.Debounce = *f.Debounce
	}
	if f.Sound != nil {
		c.Sound = *f.Sound
	}
	if f.QuoteMode != nil {
		c.QuoteMode = *f.QuoteMode
	}
	if f.Catalog != nil {
		c.Catalog = *f.Catalog
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
}

// Apply layers command-line values over c.
func (c *Config) Apply(o Overrides) {
	c.merge(file{
		DataDir:   o.DataDir,
		Debounce:  o.Debounce,
		Sound:     o.Sound,
		QuoteMode: o.QuoteMode,
		Catalog:   o.Catalog,
	})
}

func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Debounce)
	}
	if _, err := journal.ParseMode(c.QuoteMode); err != nil {
		return fmt.Errorf("quote_mode: %w", err)
	}
	return nil
}

// Mode returns the parsed quote mode. Call Validate first.
func (c Config) Mode() journal.Mode {
	m, _ := journal.ParseMode(c.QuoteMode)
	return m
}

// DBPath is the SQLite file inside DataDir.
func (c Config) DBPath(name string) string {
	return filepath.Join(c.DataDir, name)
}

// Save writes c as YAML, creating parent directories.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
