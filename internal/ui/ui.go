package ui

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/zipx/internal/formatter"
	"github.com/desertthunder/zipx/internal/job"
	"github.com/desertthunder/zipx/internal/services"
	"github.com/desertthunder/zipx/internal/stream"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SelectView ViewState = iota
	ExtractView
	ResultView
)

// Options configures a [Model].
type Options struct {
	Archive     string
	Destination string
	SettleDelay time.Duration // Pause on the final extract frame before showing the result
	LogDir      string        // Where "save log" writes, defaults to the working directory
	Logger      *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	client      services.Client
	ctrl        *job.Controller
	session     *job.Session
	events      <-chan job.Event
	unsubscribe func()
	archive     string
	destination string
	settleDelay time.Duration
	logDir      string
	logger      *log.Logger
	width       int
	height      int
	files       []string
	entries     list.Model
	state       job.State
	settling    uint64
	bar         progress.Model
	log         viewport.Model
	spinner     spinner.Model
	notice      string
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model driving ctrl against client.
func NewModel(ctx context.Context, client services.Client, ctrl *job.Controller, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.LogDir == "" {
		opts.LogDir = "."
	}

	keys := newKeyMap()
	entries := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	entries.Title = opts.Archive
	entries.KeyMap.Quit.SetEnabled(false)
	entries.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.toggle, keys.all, keys.start}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title.UnsetMarginBottom()

	session := ctrl.Session()
	events, unsubscribe := session.Subscribe(64)

	return &Model{
		ctx:         ctx,
		view:        SelectView,
		client:      client,
		ctrl:        ctrl,
		session:     session,
		events:      events,
		unsubscribe: unsubscribe,
		archive:     opts.Archive,
		destination: opts.Destination,
		settleDelay: opts.SettleDelay,
		logDir:      opts.LogDir,
		logger:      opts.Logger,
		entries:     entries,
		state:       session.Snapshot(),
		bar:         progress.New(progress.WithDefaultGradient()),
		log:         viewport.New(0, 0),
		spinner:     sp,
		help:        help.New(),
		keys:        keys,
	}
}

// Close releases the session subscription.
func (m *Model) Close() {
	m.unsubscribe()
}

// ViewState returns the view being shown.
func (m *Model) ViewState() ViewState {
	return m.view
}

// Init lists the archive entries and starts listening for session events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listEntries(), m.waitForEvent(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.entries.SetSize(msg.Width-4, msg.Height-6)
		m.bar.Width = max(msg.Width-8, 10)
		m.log.Width = msg.Width - 4
		m.log.Height = max(msg.Height-12, 3)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && !m.filtering() {
			if m.ctrl.Cancel() {
				m.logger.Info("run cancelled on quit")
			}
			return m, tea.Quit
		}

		switch m.view {
		case SelectView:
			return m.handleSelectKeys(msg)
		case ExtractView:
			return m.handleExtractKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == SelectView {
		var cmd tea.Cmd
		m.entries, cmd = m.entries.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgEntriesListed:
		data := msg.data.(entriesListed)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.files = data.files
		return m, m.refreshEntries()

	case MsgStarted:
		data := msg.data.(started)
		if data.err != nil {
			m.err = data.err
			m.view = SelectView
			return m, m.sync()
		}
		return m, tea.Batch(m.sync(), waitForRun(data.run))

	case MsgSessionEvent:
		return m, tea.Batch(m.sync(), m.waitForEvent())

	case MsgRunFinished:
		return m, m.sync()

	case MsgSettled:
		runID := msg.data.(uint64)
		if m.view != ExtractView || m.state.RunID != runID || !m.state.Phase.Terminal() {
			return m, nil
		}
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleSelectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering() {
		var cmd tea.Cmd
		m.entries, cmd = m.entries.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.toggle):
		item, ok := m.entries.SelectedItem().(entryItem)
		if !ok {
			return m, nil
		}
		if _, err := m.session.Toggle(item.path); err != nil {
			m.err = err
			return m, nil
		}
		return m, m.refreshEntries()

	case key.Matches(msg, m.keys.all):
		paths := m.files
		if len(m.session.Selection()) == len(m.files) {
			paths = nil
		}
		if err := m.session.SetSelection(paths); err != nil {
			m.err = err
			return m, nil
		}
		return m, m.refreshEntries()

	case key.Matches(msg, m.keys.start):
		if len(m.session.Selection()) == 0 {
			m.err = job.ErrEmptySelection
			return m, nil
		}
		m.err = nil
		m.notice = ""
		m.view = ExtractView
		return m, m.start()
	}

	var cmd tea.Cmd
	m.entries, cmd = m.entries.Update(msg)
	return m, cmd
}

func (m *Model) handleExtractKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.cancel) {
		m.ctrl.Cancel()
		return m, m.sync()
	}

	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.restart):
		if err := m.ctrl.Reset(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.notice = ""
		m.view = SelectView
		return m, tea.Batch(m.sync(), m.refreshEntries())

	case key.Matches(msg, m.keys.save):
		path := filepath.Join(m.logDir, fmt.Sprintf("zipx-run-%d.log", m.state.RunID))
		if err := formatter.WriteExport(m.state, path, formatter.Text); err != nil {
			m.err = err
			return m, nil
		}
		m.notice = "Saved log to " + path
		return m, nil
	}

	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m *Model) filtering() bool {
	return m.view == SelectView && m.entries.FilterState() == list.Filtering
}

// sync re-reads the session and schedules the settle delay when a run has just ended.
func (m *Model) sync() tea.Cmd {
	m.state = m.session.Snapshot()
	m.log.SetContent(renderLog(m.state.Log))
	m.log.GotoBottom()

	if m.view != ExtractView || !m.state.Phase.Terminal() || m.settling == m.state.RunID {
		return nil
	}

	m.settling = m.state.RunID
	runID := m.state.RunID
	return tea.Tick(m.settleDelay, func(time.Time) tea.Msg {
		return settledMsg(runID)
	})
}

func (m *Model) refreshEntries() tea.Cmd {
	return m.entries.SetItems(entryItems(m.files, m.session.Selection()))
}

func (m *Model) listEntries() tea.Cmd {
	return func() tea.Msg {
		listing, err := m.client.List(m.ctx, m.archive)
		if err != nil {
			return entriesListedMsg(nil, err)
		}
		return entriesListedMsg(listing.Files, nil)
	}
}

func (m *Model) start() tea.Cmd {
	req := job.Request{Archive: m.archive, Paths: m.session.Selection(), Destination: m.destination}
	return func() tea.Msg {
		run, err := m.ctrl.Start(m.ctx, req)
		return startedMsg(run, err)
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return sessionEventMsg(ev)
	}
}

func waitForRun(run *job.Run) tea.Cmd {
	if run == nil {
		return nil
	}
	return func() tea.Msg {
		<-run.Done()
		return runFinishedMsg(run.ID)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SelectView:
		return m.renderSelect()
	case ExtractView:
		return m.renderExtract()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderSelect() string {
	var b strings.Builder
	b.WriteString(m.entries.View())
	fmt.Fprintf(&b, "\n\n%d of %d selected", len(m.session.Selection()), len(m.files))
	if m.err != nil {
		fmt.Fprintf(&b, "\n%s", styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	return b.String()
}

func (m *Model) renderExtract() string {
	title := styles.title.Render(fmt.Sprintf("Extracting from %s", m.archive))
	status := fmt.Sprintf("%s %d/%d entries → %s", m.spinner.View(), m.state.Completed, m.state.Total, m.state.Destination)
	if m.state.Phase == job.Select {
		status = fmt.Sprintf("%s Connecting...", m.spinner.View())
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.cancel, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s\n\n%s", title, status, m.bar.ViewAs(float64(m.state.Percent)/100), m.log.View(), helpView)
}

func (m *Model) renderResult() string {
	var title string
	switch m.state.Phase {
	case job.Done:
		title = styles.ok.Render("✓ Extraction Complete!")
	default:
		title = styles.err.Render(fmt.Sprintf("✗ Extraction %s", formatter.Outcome(m.state.Phase, m.state.Failure)))
	}

	info := fmt.Sprintf("\nArchive: %s\nDestination: %s\nExtracted: %d/%d (%d%%)",
		m.state.Archive, m.state.Destination, m.state.Completed, m.state.Total, m.state.Percent)
	if m.state.Message != "" {
		info += "\n" + styles.warn.Render(m.state.Message)
	}
	if m.notice != "" {
		info += "\n" + styles.info.Render(m.notice)
	}
	if m.err != nil {
		info += "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.save, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, info, m.log.View(), helpView)
}

func renderLog(frames []job.Frame) string {
	lines := make([]string, len(frames))
	for i, f := range frames {
		switch f.Kind {
		case stream.Success:
			lines[i] = styles.ok.Render(f.Text)
		case stream.Error:
			lines[i] = styles.err.Render(f.Text)
		case stream.Meta:
			lines[i] = styles.help.Render(f.Text)
		default:
			lines[i] = f.Text
		}
	}
	return strings.Join(lines, "\n")
}
