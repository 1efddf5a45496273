// Package tui hosts the console, zone panel, upload form and log viewer in
// one Bubble Tea program.
package tui

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/skratchdot/open-golang/open"

	"github.com/idilsaglam/riego/internal/console"
	"github.com/idilsaglam/riego/internal/logview"
	"github.com/idilsaglam/riego/internal/upload"
	"github.com/idilsaglam/riego/internal/zones"
)

// Deps are the widgets the screen drives. They are built by the caller so
// the same instances can be shared with tests.
type Deps struct {
	Console *console.Console
	Zones   *zones.Panel
	Upload  *upload.Form
	Logs    *logview.Viewer
	History []string
	WebURL  string
	Title   string

	// Open launches a browser; defaults to open.Run.
	Open func(url string) error
}

type section int

const (
	secConsole section = iota
	secZones
	secFilename
	secContent
	secLogs
	sectionCount
)

// messages
type (
	consoleDoneMsg struct{}
	uploadDoneMsg  struct{}
	zoneDoneMsg    struct{ zone string }
	logsUpdatedMsg struct{}
	openedMsg      struct{ err error }
)

type modelTUI struct {
	ctx  context.Context
	deps Deps
	keys keyMap
	help help.Model
	spin spinner.Model

	focus section

	// console
	cmdInput    textinput.Model
	history     []string
	histIdx     int
	consoleBusy bool

	// zones
	zoneIdx   int
	durations []textinput.Model
	inFlight  int

	// upload
	fileInput  textinput.Model
	content    textarea.Model
	uploadBusy bool

	// logs
	logs viewport.Model

	notice string
	width  int
	height int
}

func newModel(ctx context.Context, d Deps) modelTUI {
	if d.Open == nil {
		d.Open = open.Run
	}
	m := modelTUI{
		ctx:     ctx,
		deps:    d,
		keys:    newKeyMap(),
		help:    help.New(),
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		history: append([]string(nil), d.History...),
		width:   80,
		height:  40,
	}
	m.histIdx = len(m.history)

	m.cmdInput = textinput.New()
	m.cmdInput.Prompt = "$ "
	m.cmdInput.Placeholder = "ls, cat notes.txt, zone1 on 3600..."
	m.cmdInput.CharLimit = 256
	m.cmdInput.Focus()

	for range d.Zones.Buttons() {
		ti := textinput.New()
		ti.Prompt = "dur "
		ti.Placeholder = "secs"
		ti.CharLimit = 8
		ti.Width = 8
		m.durations = append(m.durations, ti)
	}

	m.fileInput = textinput.New()
	m.fileInput.Prompt = "file "
	m.fileInput.Placeholder = "config.json"
	m.fileInput.CharLimit = 128

	m.content = textarea.New()
	m.content.Placeholder = "File content..."
	m.content.ShowLineNumbers = false
	m.content.SetHeight(5)

	m.logs = viewport.New(76, 8)
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, d Deps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(ctx, d), tea.WithAltScreen(), tea.WithContext(ctx))
	d.Logs.OnUpdate = func() { p.Send(logsUpdatedMsg{}) }
	defer d.Logs.Stop()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func (m modelTUI) Init() tea.Cmd { return textinput.Blink }

func (m modelTUI) busy() bool { return m.consoleBusy || m.uploadBusy || m.inFlight > 0 }

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case consoleDoneMsg:
		m.consoleBusy = false
		// a cat may have filled the upload form
		m.fileInput.SetValue(m.deps.Upload.Filename.Text())
		m.content.SetValue(m.deps.Upload.Content.Text())
		return m, nil

	case uploadDoneMsg:
		m.uploadBusy = false
		return m, nil

	case zoneDoneMsg:
		if m.inFlight > 0 {
			m.inFlight--
		}
		return m, nil

	case logsUpdatedMsg:
		m.logs.SetContent(m.deps.Logs.Box.Text())
		m.logs.GotoBottom()
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.notice = "open: " + msg.err.Error()
		} else {
			m.notice = "opened " + m.deps.WebURL
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.updateFocused(msg)
}

func (m modelTUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		cmd := m.setFocus((m.focus + 1) % sectionCount)
		return m, cmd
	case key.Matches(msg, m.keys.Prev):
		cmd := m.setFocus((m.focus + sectionCount - 1) % sectionCount)
		return m, cmd
	case key.Matches(msg, m.keys.Logs):
		m.toggleLogs()
		return m, nil
	case key.Matches(msg, m.keys.Open):
		url, openFn := m.deps.WebURL, m.deps.Open
		return m, func() tea.Msg { return openedMsg{err: openFn(url)} }
	case key.Matches(msg, m.keys.Upload):
		return m.submitUpload()
	}

	switch m.focus {
	case secConsole:
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.submitConsole()
		case key.Matches(msg, m.keys.Up):
			m.recall(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.recall(1)
			return m, nil
		}
	case secZones:
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.clickZone()
		case key.Matches(msg, m.keys.Up):
			cmd := m.selectZone(m.zoneIdx - 1)
			return m, cmd
		case key.Matches(msg, m.keys.Down):
			cmd := m.selectZone(m.zoneIdx + 1)
			return m, cmd
		}
	case secFilename:
		if key.Matches(msg, m.keys.Submit) {
			cmd := m.setFocus(secContent)
			return m, cmd
		}
	case secLogs:
		if key.Matches(msg, m.keys.Submit) {
			m.toggleLogs()
			return m, nil
		}
	}
	return m.updateFocused(msg)
}

// updateFocused forwards msg to the focused input and mirrors upload
// inputs into the form's panes.
func (m modelTUI) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case secConsole:
		m.cmdInput, cmd = m.cmdInput.Update(msg)
	case secZones:
		if m.zoneIdx < len(m.durations) {
			m.durations[m.zoneIdx], cmd = m.durations[m.zoneIdx].Update(msg)
		}
	case secFilename:
		m.fileInput, cmd = m.fileInput.Update(msg)
		m.deps.Upload.Filename.SetText(m.fileInput.Value())
	case secContent:
		m.content, cmd = m.content.Update(msg)
		m.deps.Upload.Content.SetText(m.content.Value())
	case secLogs:
		m.logs, cmd = m.logs.Update(msg)
	}
	return m, cmd
}

func (m *modelTUI) setFocus(s section) tea.Cmd {
	m.focus = s
	m.cmdInput.Blur()
	m.fileInput.Blur()
	m.content.Blur()
	for i := range m.durations {
		m.durations[i].Blur()
	}
	switch s {
	case secConsole:
		return m.cmdInput.Focus()
	case secZones:
		return m.selectZone(m.zoneIdx)
	case secFilename:
		return m.fileInput.Focus()
	case secContent:
		return m.content.Focus()
	}
	return nil
}

func (m *modelTUI) selectZone(i int) tea.Cmd {
	if len(m.durations) == 0 {
		return nil
	}
	if i < 0 {
		i = 0
	}
	if i >= len(m.durations) {
		i = len(m.durations) - 1
	}
	m.durations[m.zoneIdx].Blur()
	m.zoneIdx = i
	return m.durations[i].Focus()
}

func (m *modelTUI) recall(step int) {
	if len(m.history) == 0 {
		return
	}
	m.histIdx += step
	if m.histIdx < 0 {
		m.histIdx = 0
	}
	if m.histIdx >= len(m.history) {
		m.histIdx = len(m.history)
		m.cmdInput.SetValue("")
		return
	}
	m.cmdInput.SetValue(m.history[m.histIdx])
	m.cmdInput.CursorEnd()
}

func (m modelTUI) submitConsole() (tea.Model, tea.Cmd) {
	if m.consoleBusy {
		return m, nil
	}
	line := m.cmdInput.Value()
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		if n := len(m.history); n == 0 || m.history[n-1] != trimmed {
			m.history = append(m.history, trimmed)
		}
	}
	m.histIdx = len(m.history)
	m.consoleBusy = true
	ctx, c := m.ctx, m.deps.Console
	run := func() tea.Msg {
		c.Exec(ctx, line)
		return consoleDoneMsg{}
	}
	return m, tea.Batch(run, m.spin.Tick)
}

func (m modelTUI) submitUpload() (tea.Model, tea.Cmd) {
	if m.uploadBusy {
		return m, nil
	}
	m.deps.Upload.Filename.SetText(m.fileInput.Value())
	m.deps.Upload.Content.SetText(m.content.Value())
	m.uploadBusy = true
	ctx, f := m.ctx, m.deps.Upload
	run := func() tea.Msg {
		f.Submit(ctx)
		return uploadDoneMsg{}
	}
	return m, tea.Batch(run, m.spin.Tick)
}

func (m modelTUI) clickZone() (tea.Model, tea.Cmd) {
	buttons := m.deps.Zones.Buttons()
	if m.zoneIdx >= len(buttons) {
		return m, nil
	}
	zone := buttons[m.zoneIdx].Zone
	pd, err := m.deps.Zones.Begin(zone, m.durations[m.zoneIdx].Value())
	if err != nil {
		// disabled buttons swallow clicks
		log.Printf("tui: zone %s: %v", zone, err)
		return m, nil
	}
	m.inFlight++
	ctx := m.ctx
	run := func() tea.Msg {
		pd.Send(ctx)
		return zoneDoneMsg{zone: zone}
	}
	return m, tea.Batch(run, m.spin.Tick)
}

func (m *modelTUI) toggleLogs() {
	if m.deps.Logs.Toggle(m.ctx) {
		log.Printf("tui: log polling every %s", m.deps.Logs.Interval())
	}
}

func (m *modelTUI) resize() {
	inner := m.width - 6
	if inner < 20 {
		inner = 20
	}
	m.cmdInput.Width = inner - 4
	m.fileInput.Width = inner - 8
	m.content.SetWidth(inner)
	m.logs.Width = inner
	h := m.height - 34
	if h < 4 {
		h = 4
	}
	m.logs.Height = h
	m.help.Width = m.width
}
