// Package doctor runs interactive checks of everything pilsa needs from
// the machine: a writable database, an audio output and a terminal.
package doctor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/chiejihye/pilsa/audio"
	"github.com/chiejihye/pilsa/clipboard"
	"github.com/chiejihye/pilsa/kv"
	"github.com/chiejihye/pilsa/shutdown"
	"github.com/chiejihye/pilsa/sound"
)

const probeKey = "pilsa_doctor_probe"

type Options struct {
	// DBPath is the SQLite file to probe.
	DBPath string
	// OpenAudio creates the output device. Defaults to audio.Open.
	OpenAudio func() (audio.Output, error)
	// IsTerminal reports whether stdin is a terminal. Defaults to x/term.
	IsTerminal func() bool

	In  io.Reader
	Out io.Writer
}

func (o *Options) defaults() {
	if o.OpenAudio == nil {
		o.OpenAudio = func() (audio.Output, error) { return audio.Open(audio.DefaultConfig()) }
	}
	if o.IsTerminal == nil {
		o.IsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	}
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
}

type doctor struct {
	Options
	in *bufio.Reader
}

// Run executes the checks and returns an exit code (0=all pass, 1=any fail).
func Run(opts Options) int {
	opts.defaults()
	if opts.In == os.Stdin {
		stop := guardTerminal()
		defer stop()
	}
	d := &doctor{Options: opts, in: bufio.NewReader(opts.In)}

	d.println("pilsa doctor - interactive system diagnostics")
	d.println("=============================================")

	allPass := true
	if !d.checkStorage() {
		allPass = false
	}
	if !d.checkAudio() {
		allPass = false
	}
	d.checkClipboard()
	if !d.checkTerminal() {
		allPass = false
	}

	d.println()
	if allPass {
		d.println("All checks passed!")
		return 0
	}
	d.println("Some checks failed. See details above.")
	return 1
}

func (d *doctor) println(a ...any) {
	fmt.Fprintln(d.Out, a...)
}

func (d *doctor) printf(format string, a ...any) {
	fmt.Fprintf(d.Out, format, a...)
}

func (d *doctor) confirm(question string) bool {
	d.printf("%s [y/n]: ", question)
	answer, _ := d.in.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

func (d *doctor) checkStorage() bool {
	d.println()
	d.println("[1/4] Storage")
	d.printf("Database: %s\n", d.DBPath)

	store, err := kv.OpenSQLite(d.DBPath)
	if err != nil {
		d.printf("  FAIL: cannot open database: %v\n", err)
		return false
	}
	defer store.Close()

	want := time.Now().UTC().Format(time.RFC3339Nano)
	if err := store.Set(probeKey, want); err != nil {
		d.printf("  FAIL: write: %v\n", err)
		return false
	}
	got, ok, err := store.Get(probeKey)
	if derr := store.Delete(probeKey); derr != nil && err == nil {
		err = derr
	}
	if err != nil || !ok || got != want {
		d.printf("  FAIL: read back %q (present=%v, err=%v), want %q\n", got, ok, err, want)
		return false
	}

	keys, err := store.Keys()
	if err == nil {
		for _, k := range []string{kv.KeyDraft, kv.KeyArchive, kv.KeyVocabulary} {
			state := "empty"
			for _, have := range keys {
				if have == k {
					state = "present"
				}
			}
			d.printf("  %s: %s\n", k, state)
		}
	}
	d.println("  PASS: database is writable")
	return true
}

func (d *doctor) checkAudio() bool {
	d.println()
	d.println("[2/4] Audio output")

	out, err := d.OpenAudio()
	if err != nil {
		d.printf("  FAIL: cannot open audio output: %v\n", err)
		return false
	}
	defer out.Close()

	if err := out.Resume(); err != nil {
		d.printf("  FAIL: cannot start audio output: %v\n", err)
		return false
	}
	if out.State() != audio.Running {
		d.printf("  FAIL: audio output stayed %s\n", out.State())
		return false
	}

	name := out.DeviceName()
	if name == "" {
		name = "system default"
	}
	d.printf("Output device: %s\n", name)
	if audio.IsBluetooth(name) {
		d.println("  Warning: Bluetooth output adds noticeable delay to key sounds")
	}

	d.println("Playing key, space and enter sounds...")
	for _, k := range sound.Kinds() {
		if err := out.Play(sound.Samples(k, uint64(k)+1)); err != nil {
			d.printf("  FAIL: playing %s: %v\n", k, err)
			return false
		}
		time.Sleep(250 * time.Millisecond)
	}

	if !d.confirm("Did you hear three typewriter sounds?") {
		d.println("  FAIL: sounds not confirmed")
		return false
	}
	d.println("  PASS: audio output verified by user")
	return true
}

// checkClipboard only warns: copying from the archive is optional.
func (d *doctor) checkClipboard() {
	d.println()
	d.println("[3/4] Clipboard")

	if !clipboard.Available() {
		d.println("  Warning: no clipboard utility found (install xclip, xsel or wl-clipboard)")
		return
	}
	const probe = "pilsa-doctor-test"
	if saved, err := clipboard.Read(); err == nil {
		defer func() {
			if err := clipboard.Copy(saved); err != nil {
				d.printf("  Warning: could not restore clipboard: %v\n", err)
			}
		}()
	}
	if err := clipboard.Copy(probe); err != nil {
		d.printf("  Warning: %v\n", err)
		return
	}
	if got, err := clipboard.Read(); err != nil || got != probe {
		d.printf("  Warning: clipboard read back %q (err=%v)\n", got, err)
		return
	}
	d.println("  PASS: clipboard copy works")
}

func (d *doctor) checkTerminal() bool {
	d.println()
	d.println("[4/4] Terminal")

	if !d.IsTerminal() {
		d.println("  FAIL: stdin is not a terminal; run pilsa from an interactive shell")
		return false
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		d.printf("Size: %dx%d\n", w, h)
		if w < 60 {
			d.println("  Warning: narrow terminal, quotes will wrap heavily")
		}
	}
	d.println("  PASS: interactive terminal")
	return true
}

// guardTerminal puts the terminal back the way it was and exits when a
// prompt is interrupted.
func guardTerminal() (stop func()) {
	fd := int(os.Stdin.Fd())
	state, err := term.GetState(fd)
	return shutdown.OnSignal(func() {
		if err == nil {
			term.Restore(fd, state)
		}
		fmt.Fprintln(os.Stderr, "\ninterrupted")
		os.Exit(1)
	})
}
