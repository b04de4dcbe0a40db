package log

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	diagFileName    = "diagnostics_log.txt"
	archiveFileName = "archive_log.txt"
)

var (
	diagLog     zerolog.Logger
	diagFile    *os.File
	archiveFile *os.File
	logMu       sync.Mutex
	logReady    bool
	pid         int
	dir         string
	level       = zerolog.InfoLevel
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absPath(flagPath)
	}

	// Priority 2: PILSA_LOG_PATH environment variable
	if envPath := os.Getenv("PILSA_LOG_PATH"); envPath != "" {
		return absPath(envPath)
	}

	// Priority 3: Default OS-specific location
	return defaultDir()
}

// defaultDir is ~/Library/Logs/pilsa on macOS, %LocalAppData%\pilsa\logs on
// Windows and a logs directory next to config.yaml elsewhere.
func defaultDir() (string, error) {
	var base string
	var err error
	switch runtime.GOOS {
	case "darwin":
		if base, err = os.UserHomeDir(); err != nil {
			return "", err
		}
		return filepath.Join(base, "Library", "Logs", "pilsa"), nil
	case "windows":
		base, err = os.UserCacheDir()
	default:
		base, err = os.UserConfigDir()
	}
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "pilsa", "logs"), nil
}

func absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

// SetLevel changes the minimum level written to the diagnostics log.
// Unknown names keep the current level.
func SetLevel(name string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil || lvl == zerolog.NoLevel {
		return
	}
	logMu.Lock()
	level = lvl
	if logReady {
		diagLog = diagLog.Level(lvl)
	}
	logMu.Unlock()
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagFile, err = os.OpenFile(filepath.Join(dir, diagFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	archiveFile, err = os.OpenFile(filepath.Join(dir, archiveFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		diagFile = nil
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).Level(level).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if archiveFile != nil {
		archiveFile.Close()
		archiveFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Debugf(format string, args ...any) {
	if logReady {
		diagLog.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// Archived appends one line per finished transcription to archive_log.txt
// and records the event in the diagnostics log.
func Archived(sentenceID, source, text string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("sentence", sentenceID).
		Str("source", source).
		Int("chars", len([]rune(text))).
		Msg("archived")

	logMu.Lock()
	defer logMu.Unlock()
	if archiveFile == nil {
		return
	}
	flat := strings.ReplaceAll(text, "\n", " / ")
	line := fmt.Sprintf("%s\t[%s]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), sentenceID, flat)
	archiveFile.WriteString(line)
}

func WordSaved(word, source string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("word", word).
		Str("source", source).
		Msg("word_saved")
}

func SoundState(state string, enabled bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("state", state).
		Bool("enabled", enabled).
		Msg("sound")
}

func SessionStart(quoteID string, archived, words int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("quote", quoteID).
		Int("archived", archived).
		Int("words", words).
		Msg("session_start")
}

func SessionEnd(archived int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("archived", archived).
		Msg("session_end")
}
