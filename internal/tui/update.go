package tui

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/roam/internal/api"
	"github.com/tessro/roam/internal/controller"
	"github.com/tessro/roam/internal/view"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.ready = true

	case changeMsg:
		m.syncState()
		cmds = append(cmds, m.waitForChange())

	case startMsg:
		m.syncState()
		if msg.Err != nil {
			slog.Error("startup load failed", "error", msg.Err)
			cmds = append(cmds, m.setError(msg.Err))
		}

	case sendResultMsg:
		m.syncState()
		switch {
		case msg.Err == nil, quietErr(msg.Err):
		case errors.Is(msg.Err, controller.ErrBusy):
			cmds = append(cmds, m.setError(errors.New("still waiting for the previous reply")))
		default:
			// The failed entry already carries an explanation in the chat.
			slog.Debug("send failed", "error", msg.Err)
		}

	case opResultMsg:
		m.syncState()
		if msg.Err != nil && !quietErr(msg.Err) {
			slog.Error("tui operation failed", "op", msg.Op, "error", msg.Err)
			cmds = append(cmds, m.setError(msg.Err))
		}

	case deleteResultMsg:
		m.syncState()
		if msg.Err != nil && !quietErr(msg.Err) {
			slog.Error("delete failed", "kind", msg.Kind, "filename", msg.Filename, "error", msg.Err)
			cmds = append(cmds, m.setError(msg.Err))
		}

	case tickMsg:
		m.spinnerFrame++
		m.header.SetSpinnerFrame(m.spinnerFrame)
		cmds = append(cmds, m.tickCmd())

	case clearErrorMsg:
		m.err = nil
		m.helpBar.ClearError()

	default:
		// Cursor blink and other component messages.
		if m.modeState.IsInputting() {
			cmds = append(cmds, m.inputLine.Update(msg))
		}
	}

	return m, tea.Batch(cmds...)
}

// handleKey dispatches a key press according to the current mode.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	switch {
	case m.modeState.IsDeleteConfirming():
		return m.handleDeleteConfirmKey(msg)
	case m.modeState.IsInputting():
		return m.handleInputKey(msg)
	default:
		return m.handleNormalKey(msg)
	}
}

func (m *Model) handleDeleteConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Approve):
		d, err := m.modeState.ConfirmDelete()
		m.syncFocusToComponents()
		if err != nil {
			return nil
		}
		return m.deleteDocument(d.Kind, d.Filename)
	case key.Matches(msg, m.keys.Reject):
		_ = m.modeState.CancelDelete()
		m.syncFocusToComponents()
	}
	return nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		_ = m.modeState.ExitInputMode()
		m.syncFocusToComponents()

	case key.Matches(msg, m.keys.Submit):
		text := m.inputLine.Value()
		if strings.TrimSpace(text) == "" {
			return nil
		}
		// Sending is disabled until the pending reply lands; keep the text.
		if m.ctrl.State().Sending {
			return nil
		}
		m.inputLine.AddToHistory(text)
		m.inputLine.Clear()
		m.updateLayout()
		return tea.Batch(m.send(text), m.saveInputHistory(text))

	case key.Matches(msg, m.keys.HistoryUp):
		m.inputLine.HistoryUp()

	case key.Matches(msg, m.keys.HistoryDown):
		m.inputLine.HistoryDown()

	case key.Matches(msg, m.keys.ClearChat):
		return m.clearHistory()

	default:
		cmd := m.inputLine.Update(msg)
		m.updateLayout()
		return cmd
	}
	return nil
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Tab):
		if !m.panelOpen {
			return nil
		}
		_, _ = m.modeState.CycleFocus()
		m.syncFocusToComponents()
		return nil

	case key.Matches(msg, m.keys.Compose):
		_ = m.modeState.EnterInputMode()
		m.syncFocusToComponents()
		return nil

	case key.Matches(msg, m.keys.Panel):
		if m.panelOpen {
			m.ctrl.HidePanel()
			m.syncState()
			return nil
		}
		m.modeState.Focus = FocusPanel
		return m.showPanel()

	case key.Matches(msg, m.keys.PlansTab):
		return m.switchTab(api.KindPlan)
	case key.Matches(msg, m.keys.TodosTab):
		return m.switchTab(api.KindTodo)
	case key.Matches(msg, m.keys.BudgetsTab):
		return m.switchTab(api.KindBudget)

	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()

	case key.Matches(msg, m.keys.ClearChat):
		return m.clearHistory()
	}

	if m.modeState.Focus == FocusPanel && m.panelOpen {
		return m.handlePanelKey(msg)
	}
	return m.handleChatKey(msg)
}

func (m *Model) handleChatKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.chatView.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.chatView.ScrollDown(1)
	case key.Matches(msg, m.keys.Top):
		m.chatView.ScrollToTop()
	case key.Matches(msg, m.keys.Bottom):
		m.chatView.ScrollToBottom()
	case key.Matches(msg, m.keys.PageUp):
		m.chatView.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.chatView.PageDown()
	case key.Matches(msg, m.keys.Open):
		_ = m.modeState.EnterInputMode()
		m.syncFocusToComponents()
	}
	return nil
}

func (m *Model) handlePanelKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.panel.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.panel.MoveDown()
	case key.Matches(msg, m.keys.Top):
		m.panel.MoveToTop()
	case key.Matches(msg, m.keys.Bottom):
		m.panel.MoveToBottom()
	case key.Matches(msg, m.keys.PageUp):
		m.panel.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.panel.PageDown()

	case key.Matches(msg, m.keys.Open):
		if row, ok := m.panel.SelectedRow(); ok {
			return m.selectDocument(row.Kind, row.Filename)
		}

	case key.Matches(msg, m.keys.Back):
		if m.panel.Screen().Mode == view.ModeDetail {
			m.ctrl.BackToList()
			m.syncState()
		}

	case key.Matches(msg, m.keys.Toggle):
		if item, ok := m.panel.SelectedTodoItem(); ok {
			return m.toggleTodoItem(item)
		}

	case key.Matches(msg, m.keys.Delete):
		kind, filename, ok := m.panel.Target()
		if !ok {
			return nil
		}
		if !m.confirmDeletes {
			return m.deleteDocument(kind, filename)
		}
		if err := m.modeState.EnterDeleteConfirm(kind, filename); err == nil {
			m.syncFocusToComponents()
		}
	}
	return nil
}

// switchTab moves to a list tab and focuses the panel.
func (m *Model) switchTab(tab api.Kind) tea.Cmd {
	m.modeState.Focus = FocusPanel
	return m.changeTab(tab)
}
