package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chiejihye/pilsa/archive"
	"github.com/chiejihye/pilsa/catalog"
	"github.com/chiejihye/pilsa/journal"
	"github.com/chiejihye/pilsa/log"
	"github.com/chiejihye/pilsa/sound"
	"github.com/chiejihye/pilsa/vocab"
)

var statusTTL = 2500 * time.Millisecond

type tuiView int

const (
	viewWrite tuiView = iota
	viewArchive
)

type archiveTab int

const (
	tabTranscriptions archiveTab = iota
	tabVocabulary
)

var (
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	subtitleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	primaryStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("230"))
	translationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	glossStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))
	glossSelected    = lipgloss.NewStyle().Foreground(lipgloss.Color("232")).Background(lipgloss.Color("180"))
	savedMark        = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓")
	draftStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Blink(true)
	ruleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	helpKeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	soundOnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	tabActive        = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true).Underline(true)
	tabInactive      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	rowSelected      = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("237"))
)

type tuiModel struct {
	journal *journal.Journal
	engine  *sound.Engine
	copy    func(string) error

	quote  catalog.Quote
	gloss  int // selected vocabulary index in quote, -1 for none
	view   tuiView
	tab    archiveTab
	cursor int

	unlocking bool
	status    string
	statusSeq int

	width, height int
}

func newTUIModel(j *journal.Journal, e *sound.Engine, copyFn func(string) error) tuiModel {
	q, _ := j.Current()
	return tuiModel{
		journal: j,
		engine:  e,
		copy:    copyFn,
		quote:   q,
		gloss:   -1,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == KeyQuit {
			return m, tea.Quit
		}
		if m.view == viewArchive {
			return m.handleArchiveKey(msg)
		}
		return m.handleWriteKey(msg)

	case unlockedMsg:
		m.unlocking = false
		if msg.State != sound.Running && m.engine.Enabled() {
			return m.setStatus("sound unavailable")
		}

	case copiedMsg:
		if msg.Err != nil {
			log.Warnf("copy to clipboard: %v", msg.Err)
			return m.setStatus("copy failed: " + msg.Err.Error())
		}
		return m.setStatus("copied to clipboard")

	case statusExpiredMsg:
		if msg.Seq == m.statusSeq {
			m.status = ""
		}
	}
	return m, nil
}

func (m tuiModel) handleWriteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyToggleSound:
		on := m.engine.ToggleSound()
		var cmd tea.Cmd
		if on {
			m, cmd = m.unlock()
		}
		return m, cmd

	case KeyFinish:
		e, ok := m.journal.Finish()
		if !ok {
			return m.setStatus("nothing to archive yet")
		}
		m.quote, _ = m.journal.Current()
		m.gloss = -1
		return m.setStatus("archived " + e.SourceTitle)

	case KeyArchive:
		m.view = viewArchive
		m.cursor = 0
		return m, nil

	case KeyNextGloss:
		if n := len(m.quote.Vocabulary); n > 0 {
			m.gloss = (m.gloss + 1) % n
		}
		return m, nil

	case KeySaveGloss:
		if m.gloss < 0 || m.gloss >= len(m.quote.Vocabulary) {
			return m.setStatus("tab selects a word first")
		}
		g := m.quote.Vocabulary[m.gloss]
		if !m.journal.SaveWord(g) {
			return m.setStatus(g.Word + " is already saved")
		}
		return m.setStatus("saved " + g.Word)
	}

	text := m.journal.Draft()
	kind := sound.Key
	switch msg.Type {
	case tea.KeyRunes:
		text += string(msg.Runes)
	case tea.KeySpace:
		text += " "
		kind = sound.Space
	case tea.KeyEnter:
		text += "\n"
		kind = sound.Enter
	case tea.KeyBackspace:
		if r := []rune(text); len(r) > 0 {
			text = string(r[:len(r)-1])
		}
	default:
		return m, nil
	}
	m.journal.Type(text)

	var unlockCmd tea.Cmd
	if m.engine.Enabled() {
		m, unlockCmd = m.unlock()
	}
	return m, tea.Batch(unlockCmd, playCmd(m.engine, kind))
}

func (m tuiModel) handleArchiveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.archiveLen()
	switch msg.String() {
	case KeyBack, KeyArchive:
		m.view = viewWrite
	case KeySwitch, KeyLeft, KeyRight:
		if m.tab == tabTranscriptions {
			m.tab = tabVocabulary
		} else {
			m.tab = tabTranscriptions
		}
		m.cursor = 0
	case KeyUp, KeyK:
		if m.cursor > 0 {
			m.cursor--
		}
	case KeyDown, KeyJ:
		if m.cursor < n-1 {
			m.cursor++
		}
	case KeyRemove:
		if n == 0 {
			return m, nil
		}
		if m.tab == tabTranscriptions {
			e := m.journal.Archive().Entries()[m.cursor]
			m.journal.Archive().Remove(e.ID)
		} else {
			e := m.journal.Vocabulary().Entries()[m.cursor]
			m.journal.Vocabulary().Remove(e.ID)
		}
		if m.cursor >= n-1 {
			m.cursor = max(n-2, 0)
		}
		return m.setStatus("removed")
	case KeyCopy:
		if m.tab != tabTranscriptions || n == 0 {
			return m, nil
		}
		text := m.journal.Archive().Entries()[m.cursor].UserTyped
		return m, copyCmd(m.copy, text)
	}
	return m, nil
}

func (m tuiModel) archiveLen() int {
	if m.tab == tabTranscriptions {
		return m.journal.Archive().Len()
	}
	return m.journal.Vocabulary().Len()
}

// unlock starts a background unlock when the engine is locked and none is
// in flight.
func (m tuiModel) unlock() (tuiModel, tea.Cmd) {
	if m.unlocking || m.engine.State() != sound.Locked {
		return m, nil
	}
	m.unlocking = true
	e := m.engine
	return m, func() tea.Msg {
		return unlockedMsg{State: e.Unlock()}
	}
}

func (m tuiModel) setStatus(text string) (tuiModel, tea.Cmd) {
	m.statusSeq++
	m.status = text
	seq := m.statusSeq
	return m, tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return statusExpiredMsg{Seq: seq}
	})
}

func playCmd(e *sound.Engine, kind sound.Kind) tea.Cmd {
	return func() tea.Msg {
		switch kind {
		case sound.Space:
			e.OnSpace()
		case sound.Enter:
			e.OnEnter()
		default:
			e.OnKey()
		}
		return nil
	}
}

func copyCmd(copyFn func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{Err: copyFn(text)}
	}
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	width := max(min(m.width-4, 80), 1)

	var body string
	if m.view == viewArchive {
		body = m.archiveView(width)
	} else {
		body = m.writeView(width)
	}

	lines := []string{m.header(width), "", body, "", m.footer()}
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

func (m tuiModel) header(width int) string {
	left := titleStyle.Render("pilsa") + dimStyle.Render(" · 필사")

	indicator := dimStyle.Render("♪ off")
	if m.engine.Audible() {
		indicator = soundOnStyle.Render("♪ on")
	}
	right := dimStyle.Render(m.journal.Stats().String()+" · ") + indicator

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m tuiModel) writeView(width int) string {
	var b strings.Builder
	q := m.quote
	wrap := lipgloss.NewStyle().Width(width)

	b.WriteString(titleStyle.Render(q.SourceTitleLocalized) + "  " + subtitleStyle.Render(q.SourceTitle) + "\n\n")
	b.WriteString(wrap.Inherit(primaryStyle).Render(q.PrimaryText) + "\n")
	b.WriteString(wrap.Inherit(translationStyle).Render(q.TranslatedText) + "\n\n")

	var glosses []string
	for i, g := range q.Vocabulary {
		label := g.Word + " " + g.Meaning
		if m.journal.IsSaved(g.Word) {
			label += " " + savedMark
		}
		if i == m.gloss {
			glosses = append(glosses, glossSelected.Render(" "+label+" "))
		} else {
			glosses = append(glosses, glossStyle.Render("["+label+"]"))
		}
	}
	if len(glosses) > 0 {
		b.WriteString(wrap.Render(strings.Join(glosses, "  ")) + "\n")
	}

	b.WriteString(ruleStyle.Render(strings.Repeat("─", width)) + "\n")
	draft := m.journal.Draft()
	if draft == "" {
		b.WriteString(dimStyle.Render("start typing the quote...") + cursorStyle.Render("▌"))
	} else {
		b.WriteString(wrap.Inherit(draftStyle).Render(draft + "▌"))
	}
	return b.String()
}

func (m tuiModel) archiveView(width int) string {
	var b strings.Builder

	trans := fmt.Sprintf("transcriptions (%d)", m.journal.Archive().Len())
	words := fmt.Sprintf("vocabulary (%d)", m.journal.Vocabulary().Len())
	if m.tab == tabTranscriptions {
		b.WriteString(tabActive.Render(trans) + "   " + tabInactive.Render(words))
	} else {
		b.WriteString(tabInactive.Render(trans) + "   " + tabActive.Render(words))
	}
	b.WriteString("\n\n")

	var rows []string
	if m.tab == tabTranscriptions {
		for _, e := range m.journal.Archive().Entries() {
			rows = append(rows, archiveRow(e, width))
		}
	} else {
		for _, e := range m.journal.Vocabulary().Entries() {
			rows = append(rows, vocabRow(e, width))
		}
	}
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("nothing here yet"))
		return b.String()
	}

	// keep the cursor row on screen
	visible := max(m.height-12, 3)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(rows))
	for i := start; i < end; i++ {
		if i == m.cursor {
			b.WriteString(rowSelected.Render(rows[i]))
		} else {
			b.WriteString(rows[i])
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func archiveRow(e archive.Entry, width int) string {
	when := e.CompletedAt.Local().Format("2006-01-02 15:04")
	text := strings.ReplaceAll(strings.TrimSpace(e.UserTyped), "\n", " / ")
	return truncate(fmt.Sprintf("%s  %s  %s", when, e.SourceTitleLocalized, text), width)
}

func vocabRow(e vocab.Entry, width int) string {
	return truncate(fmt.Sprintf("%-12s %-20s %s", e.Word, e.Meaning, e.Source), width)
}

// truncate shortens s to width cells, ending with an ellipsis when cut.
func truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func (m tuiModel) footer() string {
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	type binding struct{ key, desc string }
	var bindings []binding
	if m.view == viewArchive {
		bindings = []binding{{"↑/↓", "move"}, {"tab", "switch"}, {"d", "remove"}, {"y", "copy"}, {"esc", "back"}}
	} else {
		bindings = []binding{{"tab", "word"}, {"ctrl+w", "save word"}, {"ctrl+s", "finish"}, {"ctrl+a", "archive"}, {"ctrl+t", "sound"}, {"ctrl+c", "quit"}}
	}
	var parts []string
	for _, bd := range bindings {
		parts = append(parts, helpKeyStyle.Render(bd.key)+helpStyle.Render(" "+bd.desc))
	}
	return strings.Join(parts, helpStyle.Render("  ·  ")) + "\n" + helpStyle.Render("pilsa "+version)
}
