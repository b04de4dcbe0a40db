package doctor

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiejihye/pilsa/audio"
	"github.com/chiejihye/pilsa/clipboard"
	"github.com/chiejihye/pilsa/kv"
)

func runDoctor(t *testing.T, answer string, out *audio.Fake, tty bool) (int, string) {
	t.Helper()
	var buf bytes.Buffer
	code := Run(Options{
		DBPath:     filepath.Join(t.TempDir(), "data", kv.DefaultDBName),
		OpenAudio:  func() (audio.Output, error) { return out, nil },
		IsTerminal: func() bool { return tty },
		In:         strings.NewReader(answer),
		Out:        &buf,
	})
	return code, buf.String()
}

func TestAllPass(t *testing.T) {
	out := audio.NewFake()
	code, text := runDoctor(t, "y\n", out, true)

	assert.Equal(t, 0, code, text)
	assert.Contains(t, text, "PASS: database is writable")
	assert.Contains(t, text, "PASS: audio output verified by user")
	assert.Contains(t, text, "All checks passed!")
	assert.Len(t, out.Plays(), 3)
	assert.Equal(t, audio.Closed, out.State())
}

func TestAudioNotConfirmed(t *testing.T) {
	code, text := runDoctor(t, "n\n", audio.NewFake(), true)
	assert.Equal(t, 1, code)
	assert.Contains(t, text, "FAIL: sounds not confirmed")
}

func TestAudioStaysSuspended(t *testing.T) {
	out := audio.NewFake()
	out.StaySuspended(true)
	code, text := runDoctor(t, "", out, true)
	assert.Equal(t, 1, code)
	assert.Contains(t, text, "stayed suspended")
	assert.Empty(t, out.Plays())
}

func TestAudioOpenFails(t *testing.T) {
	var buf bytes.Buffer
	code := Run(Options{
		DBPath:     filepath.Join(t.TempDir(), kv.DefaultDBName),
		OpenAudio:  func() (audio.Output, error) { return nil, errors.New("no server") },
		IsTerminal: func() bool { return true },
		In:         strings.NewReader(""),
		Out:        &buf,
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "cannot open audio output: no server")
}

func TestBluetoothWarning(t *testing.T) {
	out := audio.NewFake()
	out.SetDeviceName("AirPods Pro")
	_, text := runDoctor(t, "y\n", out, true)
	assert.Contains(t, text, "Bluetooth")
}

func TestNotATerminal(t *testing.T) {
	code, text := runDoctor(t, "y\n", audio.NewFake(), false)
	assert.Equal(t, 1, code)
	assert.Contains(t, text, "stdin is not a terminal")
}

func TestStorageProbeLeavesDataKeysAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), kv.DefaultDBName)
	store, err := kv.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(kv.KeyDraft, `"keep me"`))
	require.NoError(t, store.Close())

	var buf bytes.Buffer
	Run(Options{
		DBPath:     path,
		OpenAudio:  func() (audio.Output, error) { return audio.NewFake(), nil },
		IsTerminal: func() bool { return true },
		In:         strings.NewReader("y\n"),
		Out:        &buf,
	})
	assert.Contains(t, buf.String(), "pilsa_draft: present")

	store, err = kv.OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()
	v, ok, err := store.Get(kv.KeyDraft)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"keep me"`, v)

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{kv.KeyDraft}, keys, "probe key left behind")
}

func TestClipboardRestored(t *testing.T) {
	if !clipboard.Available() {
		t.Skip("no clipboard utility")
	}
	const mine = "나란히 걷는다는 것이"
	if err := clipboard.Copy(mine); err != nil {
		t.Skipf("clipboard not usable here: %v", err)
	}
	if got, err := clipboard.Read(); err != nil || got != mine {
		t.Skipf("clipboard does not round trip here: %q, %v", got, err)
	}

	runDoctor(t, "y\n", audio.NewFake(), true)

	got, err := clipboard.Read()
	require.NoError(t, err)
	assert.Equal(t, mine, got)
}
