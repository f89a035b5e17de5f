// Package tui contains the Bubble Tea dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/notify"
	"github.com/asteroid-belt/vidtally/internal/ranking"
	"github.com/asteroid-belt/vidtally/internal/telemetry"
	"github.com/asteroid-belt/vidtally/internal/tui/components"
	"github.com/asteroid-belt/vidtally/internal/tui/views"
	"github.com/asteroid-belt/vidtally/internal/usage"
	"github.com/asteroid-belt/vidtally/pkg/version"
)

// DefaultRefreshInterval is how often the dashboard reloads its snapshot.
const DefaultRefreshInterval = 5 * time.Second

// ViewType identifies the current view.
type ViewType int

const (
	ViewOverview ViewType = iota
	ViewUsage
	ViewProgress
	ViewBadges
	ViewLeaderboard
	ViewNotices
	ViewHelp
)

// tabOrder is the tab bar order; ViewHelp is not a tab.
var tabOrder = []ViewType{ViewOverview, ViewUsage, ViewProgress, ViewBadges, ViewLeaderboard, ViewNotices}

// String returns the view name for telemetry.
func (v ViewType) String() string {
	switch v {
	case ViewOverview:
		return "overview"
	case ViewUsage:
		return "usage"
	case ViewProgress:
		return "progress"
	case ViewBadges:
		return "badges"
	case ViewLeaderboard:
		return "leaderboard"
	case ViewNotices:
		return "notices"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Title is the tab label.
func (v ViewType) Title() string {
	s := v.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// Options tunes the dashboard.
type Options struct {
	RefreshInterval time.Duration
	Now             func() time.Time
	Logger          zerolog.Logger
}

type (
	tickMsg     time.Time
	openedMsg   struct{ err error }
	refreshMsg  struct{ err error }
	snapshotMsg struct {
		snap    engine.Snapshot
		notices []notify.Notice
		err     error
	}
	timerMsg struct {
		started bool
		stopped usage.StopResult
		err     error
	}
	deletedMsg struct {
		item string
		err  error
	}
)

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx       context.Context
	eng       *engine.Engine
	telemetry telemetry.Client
	logger    zerolog.Logger
	keymap    Keymap
	help      help.Model
	styles    Styles
	now       func() time.Time
	interval  time.Duration

	// Views
	currentView  ViewType
	previousView ViewType
	tabs         map[ViewType]views.Tab
	progressView *views.ProgressView
	noticesView  *views.NoticesView
	helpView     *views.HelpView

	// Forget-progress confirmation
	confirm *components.ConfirmDialog

	// State
	snap      engine.Snapshot
	status    string
	statusErr bool
	syncing   bool
	width     int
	height    int
	ready     bool
	quitting  bool

	// Session tracking
	sessionStart time.Time
	viewsVisited int
	actions      int
}

// NewModel creates the dashboard over eng.
func NewModel(ctx context.Context, eng *engine.Engine, tc telemetry.Client, opts Options) *Model {
	if tc == nil {
		tc = telemetry.Noop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}

	progressView := views.NewProgressView()
	noticesView := views.NewNoticesView()

	keymap := DefaultKeymap(len(tabOrder))
	styles := DefaultStyles()
	footerHelp := help.New()
	footerHelp.Styles.ShortKey = styles.HelpKey
	footerHelp.Styles.ShortDesc = styles.HelpDesc
	footerHelp.Styles.ShortSeparator = styles.HelpDesc

	return &Model{
		ctx:       ctx,
		eng:       eng,
		telemetry: tc,
		logger:    opts.Logger,
		keymap:    keymap,
		help:      footerHelp,
		styles:    styles,
		now:       opts.Now,
		interval:  opts.RefreshInterval,
		tabs: map[ViewType]views.Tab{
			ViewOverview:    views.NewOverviewView(opts.Now),
			ViewUsage:       views.NewUsageView(opts.Now),
			ViewProgress:    progressView,
			ViewBadges:      views.NewBadgesView(),
			ViewLeaderboard: views.NewLeaderboardView(opts.Now),
			ViewNotices:     noticesView,
		},
		progressView: progressView,
		noticesView:  noticesView,
		helpView:     views.NewHelpView(tc, views.CommandsFromBindings(keymap.FullHelp()...)),
		sessionStart: opts.Now(),
	}
}

// CurrentView reports the active view.
func (m *Model) CurrentView() ViewType {
	return m.currentView
}

// Status reports the footer status line.
func (m *Model) Status() string {
	return m.status
}

// Init opens the session and starts the refresh ticker.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.openCmd(), m.tickCmd())
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		contentHeight := m.height - 4
		if contentHeight < 5 {
			contentHeight = 5
		}
		for _, tab := range m.tabs {
			tab.SetSize(m.width, contentHeight)
		}
		m.helpView.SetSize(m.width, contentHeight)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.confirm != nil || m.currentView == ViewHelp {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.tabs[m.currentView].Update("up")
		case tea.MouseButtonWheelDown:
			m.tabs[m.currentView].Update("down")
		}
		return m, nil

	case tea.FocusMsg:
		return m, m.foregroundCmd()

	case tea.BlurMsg:
		return m, m.backgroundCmd()

	case tickMsg:
		return m, tea.Batch(m.loadCmd(), m.tickCmd())

	case openedMsg:
		if msg.err != nil {
			m.setError(msg.err)
		}
		return m, m.loadCmd()

	case snapshotMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.applySnapshot(msg.snap)
		if len(msg.notices) > 0 {
			m.noticesView.Add(msg.notices...)
			last := msg.notices[len(msg.notices)-1]
			m.setStatus(last.Title+": "+last.Message, last.Kind == notify.KindWarning)
		}
		return m, nil

	case refreshMsg:
		m.syncing = false
		switch {
		case errors.Is(msg.err, ranking.ErrNotConfigured):
			m.setStatus("Badges re-checked; leaderboard is offline", false)
		case msg.err != nil:
			m.setError(msg.err)
		default:
			m.setStatus("Leaderboard synced", false)
		}
		return m, m.loadCmd()

	case timerMsg:
		switch {
		case msg.err != nil:
			m.setError(msg.err)
		case msg.started:
			m.setStatus("Session resumed", false)
		case msg.stopped.Recorded():
			m.setStatus(fmt.Sprintf("Session paused, %s recorded", usage.FormatMinutes(msg.stopped.Minutes)), false)
		case msg.stopped.WasRunning:
			m.setStatus("Session paused, under a minute so nothing recorded", false)
		}
		return m, m.loadCmd()

	case deletedMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus("Forgot progress for "+msg.item, false)
		}
		return m, m.loadCmd()
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	if m.confirm != nil {
		done, confirmed := m.confirm.Update(k)
		if !done {
			return m, nil
		}
		item := m.confirm.Subject()
		m.confirm = nil
		if confirmed && item != "" {
			return m, m.deleteCmd(item)
		}
		return m, nil
	}

	if m.currentView == ViewHelp {
		if k == "ctrl+c" {
			return m.quit()
		}
		if m.helpView.Update(k) {
			m.currentView = m.previousView
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m.quit()

	case key.Matches(msg, m.keymap.Help):
		m.previousView = m.currentView
		m.helpView.SetViewCommands(m.tabs[m.currentView].Commands())
		m.currentView = ViewHelp
		return m, nil

	case key.Matches(msg, m.keymap.NextTab):
		m.switchTo(tabOrder[(m.tabIndex()+1)%len(tabOrder)])
		return m, nil

	case key.Matches(msg, m.keymap.PrevTab):
		m.switchTo(tabOrder[(m.tabIndex()+len(tabOrder)-1)%len(tabOrder)])
		return m, nil

	case key.Matches(msg, m.keymap.Refresh):
		if m.syncing {
			return m, nil
		}
		m.syncing = true
		m.actions++
		m.setStatus("Syncing…", false)
		return m, m.refreshCmd()

	case key.Matches(msg, m.keymap.Timer):
		m.actions++
		if m.snap.TimerState == usage.Running {
			return m, m.backgroundCmd()
		}
		return m, m.foregroundCmd()

	case key.Matches(msg, m.keymap.Delete):
		if m.currentView != ViewProgress {
			return m, nil
		}
		item := m.progressView.Selected()
		if item == "" {
			return m, nil
		}
		m.confirm = components.NewConfirmDialog("Forget progress",
			fmt.Sprintf("Remove the saved position for %s?", item), item)
		return m, nil
	}

	if key.Matches(msg, m.keymap.JumpTab) {
		if i, ok := tabIndex(k); ok && i < len(tabOrder) {
			m.switchTo(tabOrder[i])
		}
		return m, nil
	}

	m.tabs[m.currentView].Update(k)
	return m, nil
}

func (m *Model) tabIndex() int {
	for i, v := range tabOrder {
		if v == m.currentView {
			return i
		}
	}
	return 0
}

func (m *Model) switchTo(v ViewType) {
	if v == m.currentView {
		return
	}
	m.trackViewNavigation(v)
	m.previousView = m.currentView
	m.currentView = v
}

// trackViewNavigation tracks view changes for telemetry.
func (m *Model) trackViewNavigation(toView ViewType) {
	m.telemetry.TrackViewNavigated(toView.String(), m.currentView.String())
	m.viewsVisited++
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.trackSessionExit()
	return m, tea.Quit
}

// trackSessionExit reports the dashboard session summary.
func (m *Model) trackSessionExit() {
	durationMs := m.now().Sub(m.sessionStart).Milliseconds()
	m.telemetry.TrackAppExited("tui", durationMs, m.actions)
}

func (m *Model) applySnapshot(s engine.Snapshot) {
	m.snap = s
	for _, tab := range m.tabs {
		tab.SetSnapshot(s)
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) setError(err error) {
	m.logger.Warn().Err(err).Msg("dashboard action failed")
	m.setStatus(err.Error(), true)
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) openCmd() tea.Cmd {
	return func() tea.Msg {
		return openedMsg{err: m.eng.Open(m.ctx)}
	}
}

func (m *Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.eng.Snapshot(m.ctx)
		return snapshotMsg{snap: snap, notices: m.eng.Notices(), err: err}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.eng.Refresh(m.ctx)
		return refreshMsg{err: err}
	}
}

func (m *Model) foregroundCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.eng.Foreground(m.ctx); err != nil {
			return timerMsg{err: err}
		}
		return timerMsg{started: true}
	}
}

func (m *Model) backgroundCmd() tea.Cmd {
	return func() tea.Msg {
		res, err := m.eng.Background(m.ctx)
		return timerMsg{stopped: res, err: err}
	}
}

func (m *Model) deleteCmd(item string) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{item: item, err: m.eng.Ledger.DeleteProgress(item)}
	}
}

// View returns the current view as a string.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.quitting {
		return ""
	}
	if m.confirm != nil {
		return m.confirm.CenteredView(m.width, m.height)
	}

	var content string
	if m.currentView == ViewHelp {
		content = m.helpView.View()
	} else {
		content = m.tabs[m.currentView].View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		content,
		m.renderFooter(),
	)
}

func (m *Model) renderHeader() string {
	timer := m.styles.Muted.Render("○ paused")
	if m.snap.TimerState == usage.Running {
		timer = m.styles.TimerLive.Render("● watching")
	}
	left := m.styles.HeaderTitle.Render("VIDTALLY") + " " + m.styles.HeaderVersion.Render(version.Short())
	right := timer + m.styles.Muted.Render("  today "+usage.FormatMinutes(m.snap.TodayMinutes))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.styles.Header.Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) renderTabs() string {
	active := m.currentView
	if active == ViewHelp {
		active = m.previousView
	}
	parts := make([]string, 0, len(tabOrder))
	for i, v := range tabOrder {
		label := fmt.Sprintf("%d %s", i+1, v.Title())
		if v == active {
			parts = append(parts, m.styles.TabActive.Render(label))
		} else {
			parts = append(parts, m.styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFooter() string {
	status := m.styles.FooterLeft.Render(m.status)
	if m.statusErr {
		status = m.styles.StatusWarning.Render(m.status)
	}
	// Hints that don't fit beside the status are dropped from the right.
	m.help.Width = m.width - lipgloss.Width(status) - 4
	hints := m.help.ShortHelpView(m.keymap.ShortHelp())

	gap := m.width - lipgloss.Width(status) - lipgloss.Width(hints) - 2
	if gap < 1 {
		gap = 1
	}
	return m.styles.Footer.Render(status + strings.Repeat(" ", gap) + hints)
}

// Run starts the dashboard and blocks until the user quits. The caller owns
// ending the session and closing eng.
func Run(ctx context.Context, eng *engine.Engine, tc telemetry.Client, opts Options) error {
	model := NewModel(ctx, eng, tc, opts)
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
