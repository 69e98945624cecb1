// Package tui provides the Bubbletea-based terminal user interface for roam.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/roam/internal/controller"
	"github.com/tessro/roam/internal/view"
)

// Options configures the TUI.
type Options struct {
	// Server is shown in the header.
	Server string

	// HistoryPath stores sent messages for up/down recall. Empty disables it.
	HistoryPath string

	// ConfirmDeletes asks before deleting a document.
	ConfirmDeletes bool
}

// Model is the main Bubbletea model for the roam TUI.
type Model struct {
	// Window dimensions
	width  int
	height int

	// UI state
	ready bool
	err   error

	modeState ModeState
	panelOpen bool

	// Components
	header    Header
	chatView  ChatView
	panel     Panel
	inputLine InputLine
	helpBar   HelpBar

	ctrl *controller.Controller
	ctx  context.Context

	// Controller change notifications; at most one is buffered since every
	// resync reads the whole state.
	changes <-chan struct{}

	historyPath    string
	confirmDeletes bool

	spinnerFrame int

	keys KeyBindings

	now func() time.Time
}

// New creates a TUI model driven by ctrl. Call Close when done with it.
func New(ctx context.Context, ctrl *controller.Controller, opts Options) (Model, func()) {
	changes := make(chan struct{}, 1)
	cancel := ctrl.Subscribe(func(controller.Change) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	m := Model{
		header:         NewHeader(opts.Server),
		chatView:       NewChatView(),
		panel:          NewPanel(),
		inputLine:      NewInputLine(),
		helpBar:        NewHelpBar(),
		modeState:      NewModeState(),
		keys:           DefaultKeyBindings(),
		ctrl:           ctrl,
		ctx:            ctx,
		changes:        changes,
		historyPath:    opts.HistoryPath,
		confirmDeletes: opts.ConfirmDeletes,
		now:            time.Now,
	}
	m.inputLine.SetFocused(true)

	if opts.HistoryPath != "" {
		history, err := loadInputHistory(opts.HistoryPath)
		if err != nil {
			slog.Warn("could not load input history", "path", opts.HistoryPath, "error", err)
		}
		m.inputLine.SetHistory(history)
	}

	m.syncState()
	return m, cancel
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.inputLine.input.Cursor.BlinkCmd(),
		m.tickCmd(),
		m.start(),
		m.waitForChange(),
	)
}

// syncState copies a fresh controller snapshot into the components.
func (m *Model) syncState() {
	st := m.ctrl.State()

	m.chatView.SetEntries(st.Entries, st.FirstLoad)
	m.header.SetCounts(len(st.Plans), len(st.Todos), len(st.Budgets))
	m.header.SetSending(st.Sending)

	screen := view.Select(view.Input{
		ShowPanel: st.ShowPanel,
		ActiveTab: st.ActiveTab,
		Current:   st.Current,
		Plans:     st.Plans,
		Todos:     st.Todos,
		Budgets:   st.Budgets,
		Now:       m.now(),
	})
	m.panel.SetScreen(screen)

	if open := screen.Mode != view.ModeHidden; open != m.panelOpen {
		m.panelOpen = open
		if !open && m.modeState.Focus == FocusPanel {
			m.modeState.Focus = FocusChat
		}
		m.updateLayout()
	}
	m.syncFocusToComponents()
}

// syncFocusToComponents pushes the mode state's focus into the components.
func (m *Model) syncFocusToComponents() {
	m.chatView.SetFocused(m.modeState.Focus == FocusChat)
	m.panel.SetFocused(m.modeState.Focus == FocusPanel && m.panelOpen)
	m.inputLine.SetFocused(m.modeState.IsInputting())
	m.helpBar.SetContext(m.modeState, m.panel.Screen().Mode)
}

// updateLayout recalculates component dimensions.
func (m *Model) updateLayout() {
	headerHeight := 1
	statusHeight := 1
	contentHeight := max(m.height-headerHeight-statusHeight-1, 1)

	chatWidth := m.width
	if m.panelOpen {
		// Split width: 55% conversation, 45% documents
		chatWidth = m.width * 55 / 100
		m.panel.SetSize(m.width-chatWidth, contentHeight)
	}

	inputHeight := m.inputLine.ContentHeight()
	m.inputLine.SetSize(chatWidth, inputHeight)
	m.chatView.SetSize(chatWidth, max(contentHeight-inputHeight, 3))
	m.header.SetWidth(m.width)
	m.helpBar.SetWidth(m.width)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	left := lipgloss.JoinVertical(lipgloss.Left, m.chatView.View(), m.inputLine.View())
	content := left
	if m.panelOpen {
		content = lipgloss.JoinHorizontal(lipgloss.Top, left, m.panel.View())
	}

	return fmt.Sprintf("%s\n%s\n%s", m.header.View(), content, m.helpBar.View())
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, ctrl *controller.Controller, opts Options) error {
	m, cancel := New(ctx, ctrl, opts)
	defer cancel()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	slog.Debug("tui.Run: running program", "server", opts.Server)
	_, err := p.Run()
	slog.Debug("tui.Run: program exited", "error", err)
	return err
}
