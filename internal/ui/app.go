package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/skipper/internal/config"
	"github.com/five82/skipper/internal/logtail"
	"github.com/five82/skipper/internal/prefs"
	"github.com/five82/skipper/internal/skip"
	"github.com/five82/skipper/internal/state"
)

const (
	pickLoadTimeout = 20 * time.Second
	logPanelLines   = 4
	logPrefix       = "skipper"
)

// PickLoader fetches and decodes pick-map images.
type PickLoader interface {
	Decode(ctx context.Context, url string) (*skip.PickMap, error)
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Store      *state.Store
	Decoder    PickLoader
	Dispatcher *skip.Dispatcher
	Config     *config.Config
	PollTick   time.Duration
	Prefs      prefs.Prefs
	PrefsPath  string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	decoder   PickLoader
	config    *config.Config
	prefs     prefs.Prefs
	prefsPath string
	pollTick  time.Duration

	// UI state
	keys   keyMap
	help   help.Model
	theme  Theme
	width  int
	height int
	ready  bool

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Skip modal state
	skipper      *skip.Controller
	cursor       int
	confirmArmed bool
	applying     bool

	toast toastState

	// Recent lines of our own log, shown in the printer panel
	logLines []string

	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	if pollTick > time.Second {
		pollTick = time.Second
	}

	p := opts.Prefs
	if strings.TrimSpace(p.Theme) == "" {
		p = prefs.Default()
	}
	theme := GetTheme(p.Theme)

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = skip.NewDispatcher(nil, "")
	}

	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		decoder:   opts.Decoder,
		config:    opts.Config,
		prefs:     p,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		theme:     theme,
		skipper:   skip.NewController(dispatcher, theme.Palette()),
	}
	m.applyHelpStyles()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		cmd := m.syncSkip()
		return m, cmd

	case logLinesMsg:
		m.logLines = msg
		return m, nil

	case pickLoadedMsg:
		m.skipper.PickLoaded(msg.url, msg.pick, msg.err)
		return m, nil

	case applyResultMsg:
		return m.handleApplyResult(msg)

	case toastExpiredMsg:
		if msg.id == m.toast.id {
			m.toast = toastState{id: m.toast.id}
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	}

	if m.skipper.IsOpen() {
		return m.handleSkipKey(msg)
	}

	if key.Matches(msg, m.keys.OpenSkip) {
		return m.openSkip()
	}
	return m, nil
}

// cycleTheme switches to the next theme and persists the choice.
func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.skipper.SetPalette(m.theme.Palette())
	m.applyHelpStyles()
	m.prefs.Theme = m.theme.Name
	if m.prefsPath != "" {
		_ = prefs.Save(m.prefsPath, m.prefs)
	}
}

func (m *Model) applyHelpStyles() {
	styles := m.theme.Styles()
	m.help.Styles.FullKey = styles.AccentText
	m.help.Styles.FullDesc = styles.Text
	m.help.Styles.FullSeparator = styles.FaintText
	m.help.Styles.ShortKey = styles.AccentText
	m.help.Styles.ShortDesc = styles.MutedText
	m.help.Styles.ShortSeparator = styles.FaintText
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if !m.skipper.IsOpen() && m.config != nil && m.config.LogFile != "" {
		cmds = append(cmds, readLogCmd(m.config.LogFile))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + printer status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	if m.skipper.IsOpen() {
		b.WriteString(m.renderSkip())
	} else {
		b.WriteString(m.renderPrinter())
	}

	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type logLinesMsg []string

type pickLoadedMsg struct {
	url  string
	pick *skip.PickMap
	err  error
}

type applyResultMsg struct {
	ids []int
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func readLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, logPanelLines)
		if err != nil {
			return logLinesMsg{"log unavailable: " + err.Error()}
		}
		for i, line := range lines {
			lines[i] = logtail.StripPrefix(line, logPrefix)
		}
		return logLinesMsg(lines)
	}
}

func loadPickCmd(ctx context.Context, loader PickLoader, url string) tea.Cmd {
	if loader == nil {
		return func() tea.Msg {
			return pickLoadedMsg{url: url, err: skip.ErrPickMapDecodeFailed}
		}
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, pickLoadTimeout)
		defer cancel()
		pm, err := loader.Decode(ctx, url)
		return pickLoadedMsg{url: url, pick: pm, err: err}
	}
}

func dispatchCmd(ctx context.Context, c *skip.Controller, avail skip.Availability, ids []int) tea.Cmd {
	return func() tea.Msg {
		err := c.Dispatch(ctx, avail, ids)
		return applyResultMsg{ids: ids, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(m.ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
