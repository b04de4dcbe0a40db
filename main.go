package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chiejihye/pilsa/archive"
	"github.com/chiejihye/pilsa/audio"
	"github.com/chiejihye/pilsa/catalog"
	"github.com/chiejihye/pilsa/clipboard"
	"github.com/chiejihye/pilsa/config"
	"github.com/chiejihye/pilsa/doctor"
	"github.com/chiejihye/pilsa/draft"
	"github.com/chiejihye/pilsa/journal"
	"github.com/chiejihye/pilsa/kv"
	"github.com/chiejihye/pilsa/log"
	"github.com/chiejihye/pilsa/shutdown"
	"github.com/chiejihye/pilsa/sound"
	"github.com/chiejihye/pilsa/vocab"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configFlag := flag.String("config", "", "config file (default: $XDG_CONFIG_HOME/pilsa/config.yaml)")
	dataFlag := flag.String("data", "", "data directory holding pilsa.db")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	debounceFlag := flag.Duration("debounce", draft.DefaultDebounce, "quiet period before the draft is saved")
	soundFlag := flag.Bool("sound", true, "play typewriter sounds")
	randomFlag := flag.Bool("random", false, "start with a random quote instead of today's")
	catalogFlag := flag.String("catalog", "", "YAML quote file replacing the built-in quotes")
	memoryFlag := flag.Bool("memory", false, "keep everything in memory, nothing is saved")
	renderFlag := flag.String("render", "", "write the key, space and enter sounds as FLAC files into `dir` and exit")
	initConfigFlag := flag.Bool("init-config", false, "write the effective configuration to the config file and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("pilsa %s\n", version)
		return 0
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		return 1
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open log files: %v\n", err)
	}
	defer log.Close()
	log.Info("pilsa " + version + " starting")

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cfg.Apply(overridesFromFlags(flag.CommandLine, dataFlag, debounceFlag, soundFlag, randomFlag, catalogFlag))
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		return 1
	}
	log.SetLevel(cfg.LogLevel)

	if *initConfigFlag {
		path := *configFlag
		if path == "" {
			if path, err = config.DefaultPath(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return 1
			}
		}
		if err := cfg.Save(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("wrote %s\n", path)
		return 0
	}

	if *renderFlag != "" {
		paths, err := sound.RenderAll(*renderFlag)
		for _, p := range paths {
			fmt.Println(p)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if *doctorFlag {
		return doctor.Run(doctor.Options{DBPath: cfg.DBPath(kv.DefaultDBName)})
	}

	cat := catalog.Default()
	if cfg.Catalog != "" {
		if cat, err = catalog.Load(cfg.Catalog); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	var store kv.Store
	if *memoryFlag {
		store = kv.NewMemory()
	} else {
		dbPath := cfg.DBPath(kv.DefaultDBName)
		db, err := kv.OpenSQLite(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot open %s: %v\n", dbPath, err)
			return 1
		}
		store = db
	}
	defer store.Close()

	j := journal.New(cat,
		draft.Open(store, draft.WithDebounce(cfg.Debounce)),
		vocab.Open(store),
		archive.Open(store),
	)
	j.Start(cfg.Mode())

	engine := sound.New(func() (audio.Output, error) {
		return audio.Open(audio.DefaultConfig())
	}, sound.WithEnabled(cfg.Sound))

	p := tea.NewProgram(newTUIModel(j, engine, clipboard.Copy), tea.WithAltScreen())
	stop := shutdown.OnSignal(p.Quit)
	_, runErr := p.Run()
	stop()

	j.Close()
	if err := engine.Close(); err != nil {
		log.Debugf("closing audio: %v", err)
	}

	if runErr != nil {
		log.Errorf("tui: %v", runErr)
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 1
	}
	return 0
}

// overridesFromFlags collects the flags that were set explicitly so that
// unset flags do not mask the config file.
func overridesFromFlags(fs *flag.FlagSet, data *string, debounce *time.Duration, soundOn, random *bool, catalogPath *string) config.Overrides {
	var o config.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			o.DataDir = data
		case "debounce":
			o.Debounce = debounce
		case "sound":
			o.Sound = soundOn
		case "random":
			mode := journal.ModeToday
			if *random {
				mode = journal.ModeRandom
			}
			s := string(mode)
			o.QuoteMode = &s
		case "catalog":
			o.Catalog = catalogPath
		}
	})
	return o
}
